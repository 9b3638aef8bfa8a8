// Package scheduler повторяет выполнение файла команд по расписанию.
//
// Структура:
//   - scheduler.go — цикл Scheduler.Run
//   - cron.go      — Trigger по cron-выражению или фиксированному интервалу
//
// Использование:
//
//	trigger, err := scheduler.Cron("*/5 * * * *", "UTC")
//	sched := scheduler.New(scheduler.Config{
//	    Runner:        orch,
//	    Trigger:       trigger,
//	    Source:        path,
//	    StopOnFailure: true,
//	    Logger:        logger,
//	})
//	stats, err := sched.Run(ctx, file.Commands)
package scheduler
