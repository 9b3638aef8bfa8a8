package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — один проход оркестратора по списку команд.
//
// Run создаётся в начале выполнения и финализируется, когда
// все команды выполнены или первая из них упала.
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// Source — откуда взяты команды (путь к файлу), только для журнала.
	Source string `json:"source,omitempty"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// Total — количество команд в списке.
	Total int `json:"total"`

	// Executions — выполненные (или упавшие) команды в порядке списка.
	// Команды после упавшей сюда не попадают.
	Executions []Execution `json:"executions"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки, если run завершился с FAILED.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания run.
	CreatedAt time.Time `json:"created_at"`
}

// NewRun создаёт run в статусе PENDING.
func NewRun(source string, total int) *Run {
	return &Run{
		ID:         uuid.New(),
		Source:     source,
		Status:     RunStatusPending,
		Total:      total,
		Executions: make([]Execution, 0, total),
		CreatedAt:  time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// Succeeded возвращает true, если run успешно завершён.
func (r *Run) Succeeded() bool {
	return r.Status == RunStatusSucceeded
}

// Skipped возвращает количество команд, которые не запускались.
func (r *Run) Skipped() int {
	return r.Total - len(r.Executions)
}

// MarkRunning переводит run в статус RUNNING.
func (r *Run) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkSucceeded переводит run в статус SUCCEEDED.
func (r *Run) MarkSucceeded() {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
}

// MarkFailed переводит run в статус FAILED с ошибкой.
func (r *Run) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}
