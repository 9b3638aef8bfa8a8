package domain

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
type RunStatus string

const (
	// RunStatusPending — run создан, но ещё не начал выполняться.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — run в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — все команды выполнены и прошли проверку.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — одна из команд упала, оставшиеся не запускались.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed:
		return true
	default:
		return false
	}
}

// ExecutionStatus — статус выполнения одной команды.
type ExecutionStatus string

const (
	// ExecutionStatusSucceeded — вызов успешен, ожидания выполнены.
	ExecutionStatusSucceeded ExecutionStatus = "SUCCEEDED"

	// ExecutionStatusFailed — ошибка разрешения, вызова или проверки.
	ExecutionStatusFailed ExecutionStatus = "FAILED"
)
