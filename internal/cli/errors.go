package cli

import "errors"

// Ошибки CLI. main завершает процесс с кодом 1 при любой из них.
var (
	// ErrRunFailed — run завершился со статусом FAILED.
	ErrRunFailed = errors.New("run failed")

	// ErrInvalidFile — файл команд не прошёл проверку.
	ErrInvalidFile = errors.New("invalid command file")

	// ErrNoTrigger — для schedule не задан ни --cron, ни --every.
	ErrNoTrigger = errors.New("either --cron or --every is required")
)
