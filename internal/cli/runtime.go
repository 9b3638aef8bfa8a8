package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/invoker/internal/capability"
	"github.com/shaiso/invoker/internal/domain"
	"github.com/shaiso/invoker/internal/engine"
	"github.com/shaiso/invoker/internal/mq"
	"github.com/shaiso/invoker/internal/orchestrator"
	"github.com/shaiso/invoker/internal/repo"
	"github.com/shaiso/invoker/internal/telemetry"
)

// RuntimeOptions — флаги, общие для run и schedule.
type RuntimeOptions struct {
	// Journal — писать runs в Postgres (DB_URL).
	Journal bool

	// Events — публиковать события run в RabbitMQ (RABBITMQ_URL).
	Events bool

	// Timeout — таймаут одного вызова (default: INVOKER_CALL_TIMEOUT).
	Timeout time.Duration

	// BaseDir — каталог для путей бинарной подстановки (default: рабочий каталог).
	BaseDir string
}

func (o *RuntimeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.Journal, "journal", false, "Record runs in Postgres (DB_URL)")
	cmd.Flags().BoolVar(&o.Events, "events", false, "Publish run events to RabbitMQ (RABBITMQ_URL)")
	cmd.Flags().DurationVar(&o.Timeout, "timeout", 0, "Per-call timeout (default INVOKER_CALL_TIMEOUT)")
	cmd.Flags().StringVar(&o.BaseDir, "base-dir", "", "Directory for payload file paths (default current directory)")
}

// Runtime — собранные зависимости для выполнения файла команд.
type Runtime struct {
	Registry     *capability.Registry
	Orchestrator *orchestrator.Orchestrator
	Metrics      *telemetry.Metrics

	env     *Env
	closers []func() error
}

// NewRuntime создаёт реестр capability, наблюдателей и оркестратор.
// При ошибке уже открытые ресурсы закрываются.
func NewRuntime(ctx context.Context, env *Env, file *domain.CommandFile, opts RuntimeOptions) (*Runtime, error) {
	reg, err := capability.Default(ctx, env.CapabilityConfig())
	if err != nil {
		return nil, fmt.Errorf("register capabilities: %w", err)
	}

	rt := &Runtime{
		Registry: reg,
		Metrics:  telemetry.NewMetrics(),
		env:      env,
	}

	if err := requireKnown(file, reg); err != nil {
		_ = rt.Close()
		return nil, err
	}

	observers := []orchestrator.Observer{rt.Metrics}

	if opts.Journal {
		pool, err := repo.NewPool(ctx, env.Settings.DatabaseURL)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		rt.closers = append(rt.closers, func() error { pool.Close(); return nil })

		journal := repo.NewJournal(pool)
		if err := journal.EnsureSchema(ctx); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		observers = append(observers, journal)
	}

	if opts.Events {
		conn, err := mq.Dial(ctx, env.Settings.RabbitURL, env.Logger)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("connect events broker: %w", err)
		}
		rt.closers = append(rt.closers, conn.Close)

		if err := mq.SetupTopology(ctx, conn); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("setup events topology: %w", err)
		}
		observers = append(observers, mq.NewEventSink(mq.NewPublisher(conn, env.Logger)))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = env.Settings.CallTimeout
	}

	rt.Orchestrator = orchestrator.New(orchestrator.Config{
		Invoker: reg,
		Resolver: engine.NewResolver(
			engine.WithEnv(env.Vars.Lookup()),
			engine.WithBaseDir(opts.BaseDir),
		),
		CallTimeout: timeout,
		Observers:   observers,
		Logger:      env.Logger,
	})

	return rt, nil
}

// PushMetrics отправляет метрики в Pushgateway, если он настроен.
// Ошибка только логируется.
func (r *Runtime) PushMetrics(ctx context.Context) {
	url := r.env.Settings.PushgatewayURL
	if url == "" {
		return
	}
	if err := r.Metrics.Push(ctx, url, r.env.Settings.PushJob); err != nil {
		r.env.Logger.Warn("failed to push metrics", "error", err)
	}
}

// Close закрывает наблюдателей и реестр capability.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.Registry.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// loadFile читает файл команд и выполняет статическую проверку.
func loadFile(path string) (*domain.CommandFile, error) {
	file, err := engine.LoadCommandFile(path)
	if err != nil {
		return nil, err
	}
	if err := engine.Validate(file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return file, nil
}

// checkFile возвращает все ошибки статической проверки, включая
// capability, которых нет в реестре.
func checkFile(file *domain.CommandFile, reg *capability.Registry) []*engine.ValidationError {
	errs := engine.Check(file)
	if file == nil {
		return errs
	}

	for i := range file.Commands {
		cmd := &file.Commands[i]
		if cmd.ObjectType == "" || cmd.Method == "" {
			continue
		}
		if !reg.Has(cmd.ObjectType, cmd.Method) {
			errs = append(errs, engine.NewValidationError(i, "objectType",
				fmt.Sprintf("unknown capability %s", cmd.Capability()),
				capability.ErrCapabilityNotFound))
		}
	}

	if err := reg.CheckVersions(file.APIVersions); err != nil {
		errs = append(errs, engine.NewValidationError(-1, "apiVersions", err.Error(), err))
	}

	return errs
}

// requireKnown останавливает запуск, если в файле есть неизвестные capability.
func requireKnown(file *domain.CommandFile, reg *capability.Registry) error {
	if errs := checkFile(file, reg); len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFile, errs[0])
	}
	return nil
}
