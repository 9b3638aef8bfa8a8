package domain

import "time"

// Execution — результат выполнения одной команды внутри run.
type Execution struct {
	// Index — позиция команды в списке (с нуля).
	Index int `json:"index"`

	// ObjectType и Method — вызванная capability.
	ObjectType string `json:"object_type"`
	Method     string `json:"method"`

	// ResultsID — ключ публикации результата.
	ResultsID string `json:"results_id,omitempty"`

	// Status — статус выполнения команды.
	Status ExecutionStatus `json:"status"`

	// Stage — этап, на котором команда упала: resolve, invoke, expect.
	Stage string `json:"stage,omitempty"`

	// Result — сырой результат вызова (если вызов успешен).
	Result map[string]any `json:"result,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения.
	FinishedAt time.Time `json:"finished_at"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`
}

// Duration возвращает продолжительность выполнения.
func (e *Execution) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Capability возвращает "ObjectType.Method".
func (e *Execution) Capability() string {
	return e.ObjectType + "." + e.Method
}
