package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/invoker/internal/domain"
	"github.com/shaiso/invoker/internal/engine"
	"github.com/shaiso/invoker/internal/telemetry"
)

// DefaultCallTimeout — таймаут одного вызова по умолчанию.
const DefaultCallTimeout = 5 * time.Minute

// Invoker вызывает capability по имени.
// capability.Registry реализует этот интерфейс.
type Invoker interface {
	Invoke(ctx context.Context, objectType, method string, params map[string]any) (map[string]any, error)
}

// Observer получает события run.
//
// Ошибка наблюдателя логируется и не влияет на run.
type Observer interface {
	RunStarted(ctx context.Context, run *domain.Run) error
	CommandFinished(ctx context.Context, run *domain.Run, exec *domain.Execution) error
	RunFinished(ctx context.Context, run *domain.Run) error
}

// Orchestrator выполняет список команд строго по порядку.
//
// Для каждой команды:
//  1. разрешает директивы в params по результатам предыдущих команд
//  2. вызывает capability с таймаутом CallTimeout
//  3. публикует результат под resultsID
//  4. сверяет результат с expectedResults
//
// Первая ошибка на любом этапе останавливает run: следующие команды
// не запускаются. Повторов нет.
type Orchestrator struct {
	invoker     Invoker
	resolver    *engine.Resolver
	callTimeout time.Duration
	observers   []Observer
	logger      *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Invoker — исполнитель capability.
	Invoker Invoker

	// Resolver — резолвер директив (default: engine.NewResolver()).
	Resolver *engine.Resolver

	// CallTimeout — таймаут одного вызова (default: 5m).
	CallTimeout time.Duration

	// Observers — наблюдатели событий run.
	Observers []Observer

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = engine.NewResolver()
	}

	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		invoker:     cfg.Invoker,
		resolver:    resolver,
		callTimeout: callTimeout,
		observers:   cfg.Observers,
		logger:      logger,
	}
}

// Run выполняет команды и возвращает общий результат.
func (o *Orchestrator) Run(ctx context.Context, commands []domain.Command) bool {
	return o.Execute(ctx, "", commands).Succeeded()
}

// Execute выполняет команды и возвращает полный отчёт о run.
// Исходные команды не изменяются. Execute не паникует и не
// возвращает ошибок: причина неудачи — в Run.Error и Executions.
func (o *Orchestrator) Execute(ctx context.Context, source string, commands []domain.Command) *domain.Run {
	state := NewRunState(domain.NewRun(source, len(commands)))
	run := state.Run
	logger := telemetry.WithRunID(o.logger, run.ID.String())

	run.MarkRunning()
	logger.Info("run started", "source", source, "commands", len(commands))
	o.notify(ctx, logger, "run_started", func(obs Observer) error {
		return obs.RunStarted(ctx, run)
	})

	err := o.execute(ctx, logger, state, commands)
	if err != nil {
		run.MarkFailed(err.Error())
		logger.Error("run failed",
			"error", err,
			"executed", len(run.Executions),
			"skipped", run.Skipped(),
			"duration", run.Duration(),
		)
	} else {
		run.MarkSucceeded()
		logger.Info("run succeeded",
			"executed", len(run.Executions),
			"duration", run.Duration(),
		)
	}

	o.notify(ctx, logger, "run_finished", func(obs Observer) error {
		return obs.RunFinished(ctx, run)
	})
	return run
}

func (o *Orchestrator) execute(ctx context.Context, logger *slog.Logger, state *RunState, commands []domain.Command) error {
	if o.invoker == nil {
		return ErrNoInvoker
	}

	for i := range commands {
		cmd := &commands[i]
		cmdLogger := telemetry.WithCommand(logger, i, cmd.ResultsID, cmd.ObjectType, cmd.Method)

		exec, err := o.executeCommand(ctx, cmdLogger, state, i, cmd)

		o.notify(ctx, cmdLogger, "command_finished", func(obs Observer) error {
			return obs.CommandFinished(ctx, state.Run, exec)
		})

		if err != nil {
			cmdLogger.Error("command failed",
				"stage", err.Stage,
				"error", err.Err,
				"duration", exec.Duration(),
			)
			return err
		}

		cmdLogger.Info("command succeeded", "duration", exec.Duration())
	}

	return nil
}

// executeCommand выполняет одну команду.
func (o *Orchestrator) executeCommand(ctx context.Context, logger *slog.Logger, state *RunState, index int, cmd *domain.Command) (*domain.Execution, *CommandError) {
	exec := state.begin(index, cmd)

	fail := func(stage Stage, result map[string]any, err error) (*domain.Execution, *CommandError) {
		cmdErr := &CommandError{
			Index:      index,
			ResultsID:  cmd.ResultsID,
			Capability: cmd.Capability(),
			Stage:      stage,
			Err:        err,
		}
		return state.fail(exec, result, cmdErr), cmdErr
	}

	if err := ctx.Err(); err != nil {
		return fail(StageInvoke, nil, fmt.Errorf("%w: %v", ErrRunCancelled, err))
	}

	// 1. Разрешение директив
	params, err := o.resolver.Resolve(cmd.Params, state.Store)
	if err != nil {
		return fail(StageResolve, nil, err)
	}
	logger.Debug("params resolved", paramsAttr(params))

	// 2. Вызов
	result, err := o.invoke(ctx, cmd, params)
	if err != nil {
		return fail(StageInvoke, nil, err)
	}

	// 3. Публикация
	if cmd.ResultsID != "" {
		if err := state.Store.Publish(cmd.ResultsID, result); err != nil {
			return fail(StagePublish, result, err)
		}
	}

	// 4. Проверка ожиданий
	if cmd.HasExpectations() {
		if err := CheckExpectations(cmd.ExpectedResults, result); err != nil {
			return fail(StageExpect, result, err)
		}
	}

	return state.succeed(exec, result), nil
}

// invoke вызывает capability под таймаутом CallTimeout.
func (o *Orchestrator) invoke(ctx context.Context, cmd *domain.Command, params map[string]any) (map[string]any, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	result, err := o.invoker.Invoke(callCtx, cmd.ObjectType, cmd.Method, params)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %v", ErrRunCancelled, err)
		case errors.Is(callCtx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w after %s: %v", ErrCallTimeout, o.callTimeout, err)
		}
		return nil, err
	}
	if result == nil {
		result = make(map[string]any)
	}
	return result, nil
}

// notify рассылает событие наблюдателям; ошибки только логируются.
func (o *Orchestrator) notify(ctx context.Context, logger *slog.Logger, event string, fn func(Observer) error) {
	for _, obs := range o.observers {
		if err := fn(obs); err != nil {
			logger.Warn("observer failed",
				"event", event,
				"observer", fmt.Sprintf("%T", obs),
				"error", err,
			)
		}
	}
}
