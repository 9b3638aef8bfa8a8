package cli

import (
	"context"

	"github.com/shaiso/invoker/internal/domain"
)

// reportingRunner выполняет run, выводит отчёт и отправляет метрики.
type reportingRunner struct {
	runtime *Runtime
	out     *Output
}

func (r *reportingRunner) Execute(ctx context.Context, source string, commands []domain.Command) *domain.Run {
	run := r.runtime.Orchestrator.Execute(ctx, source, commands)
	r.runtime.PushMetrics(ctx)
	r.out.Report(run)
	return run
}
