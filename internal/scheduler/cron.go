package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер cron-выражений (5 полей и дескрипторы @hourly, @every 1m).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Trigger вычисляет время следующего запуска.
type Trigger interface {
	Next(from time.Time) time.Time
	String() string
}

// cronTrigger — расписание по cron-выражению.
type cronTrigger struct {
	expr     string
	schedule cron.Schedule
	loc      *time.Location
}

func (t *cronTrigger) Next(from time.Time) time.Time {
	return t.schedule.Next(from.In(t.loc))
}

func (t *cronTrigger) String() string {
	return "cron " + t.expr
}

// intervalTrigger — фиксированный интервал.
type intervalTrigger struct {
	every time.Duration
}

func (t *intervalTrigger) Next(from time.Time) time.Time {
	return from.Add(t.every)
}

func (t *intervalTrigger) String() string {
	return "every " + t.every.String()
}

// Cron создаёт Trigger по cron-выражению.
// Пустой или невалидный timezone — UTC.
func Cron(expr, timezone string) (Trigger, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidCron, expr, err)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}

	return &cronTrigger{expr: expr, schedule: schedule, loc: loc}, nil
}

// Every создаёт Trigger с фиксированным интервалом.
func Every(interval time.Duration) (Trigger, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	return &intervalTrigger{every: interval}, nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCron, expr, err)
	}
	return nil
}
