package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/invoker/internal/domain"
)

// Runner выполняет список команд.
// orchestrator.Orchestrator реализует этот интерфейс.
type Runner interface {
	Execute(ctx context.Context, source string, commands []domain.Command) *domain.Run
}

// Scheduler повторяет один и тот же список команд по Trigger.
//
// Каждый запуск получает исходные команды: разрешение директив
// не мутирует их, а хранилище результатов создаётся заново.
type Scheduler struct {
	runner        Runner
	trigger       Trigger
	source        string
	stopOnFailure bool
	maxRuns       int
	immediate     bool
	logger        *slog.Logger
	now           func() time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Runner  Runner
	Trigger Trigger

	// Source — путь к файлу команд, для логов и отчёта.
	Source string

	// StopOnFailure — остановиться после первого неудачного run.
	StopOnFailure bool

	// MaxRuns — ограничение числа запусков (0: без ограничения).
	MaxRuns int

	// Immediate — первый запуск сразу, не дожидаясь Trigger.
	Immediate bool

	Logger *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		runner:        cfg.Runner,
		trigger:       cfg.Trigger,
		source:        cfg.Source,
		stopOnFailure: cfg.StopOnFailure,
		maxRuns:       cfg.MaxRuns,
		immediate:     cfg.Immediate,
		logger:        logger,
		now:           time.Now,
	}
}

// Stats — итоги работы Scheduler.
type Stats struct {
	Runs      int
	Succeeded int
	Failed    int
}

// Run запускает цикл до отмены ctx, MaxRuns или неудачи при StopOnFailure.
//
// Отмена ctx — штатная остановка: возвращается nil. Run, прерванный
// отменой, учитывается как неудачный.
func (s *Scheduler) Run(ctx context.Context, commands []domain.Command) (Stats, error) {
	var stats Stats

	s.logger.Info("scheduler started",
		"trigger", s.trigger.String(),
		"source", s.source,
		"stop_on_failure", s.stopOnFailure,
	)

	next := s.now()
	if !s.immediate {
		next = s.trigger.Next(next)
	}

	for {
		if s.maxRuns > 0 && stats.Runs >= s.maxRuns {
			s.logger.Info("scheduler reached max runs", "runs", stats.Runs)
			return stats, nil
		}

		wait := next.Sub(s.now())
		if wait < 0 {
			wait = 0
		}
		s.logger.Debug("waiting for next run", "next_run_at", next, "wait", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped",
				"runs", stats.Runs,
				"succeeded", stats.Succeeded,
				"failed", stats.Failed,
			)
			return stats, nil
		case <-timer.C:
		}

		run := s.runner.Execute(ctx, s.source, commands)
		stats.Runs++

		if run.Succeeded() {
			stats.Succeeded++
		} else {
			stats.Failed++
			if s.stopOnFailure {
				s.logger.Warn("run failed, stopping scheduler", "run_id", run.ID, "error", run.Error)
				return stats, fmt.Errorf("%w: run %s: %s", ErrRunFailed, run.ID, run.Error)
			}
		}

		// Следующее время считается от конца run: пропущенные
		// срабатывания не догоняются.
		next = s.trigger.Next(s.now())
	}
}
