package scheduler

import "errors"

// Ошибки планировщика.
var (
	// ErrInvalidCron — невалидное cron-выражение.
	ErrInvalidCron = errors.New("invalid cron expression")

	// ErrInvalidInterval — интервал не положительный.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrRunFailed — run завершился неудачей при StopOnFailure.
	ErrRunFailed = errors.New("scheduled run failed")
)
