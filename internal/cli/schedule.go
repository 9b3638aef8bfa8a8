package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/invoker/internal/scheduler"
)

// scheduleOptions — флаги команды schedule.
type scheduleOptions struct {
	cron          string
	every         time.Duration
	timezone      string
	stopOnFailure bool
	maxRuns       int
	immediate     bool
	metricsAddr   string
}

// trigger строит Trigger из флагов: ровно один из --cron и --every.
func (o *scheduleOptions) trigger() (scheduler.Trigger, error) {
	switch {
	case o.cron != "" && o.every != 0:
		return nil, errors.New("--cron and --every are mutually exclusive")
	case o.cron != "":
		return scheduler.Cron(o.cron, o.timezone)
	case o.every != 0:
		return scheduler.Every(o.every)
	default:
		return nil, ErrNoTrigger
	}
}

// NewScheduleCmd создаёт команду повторного выполнения файла команд.
func NewScheduleCmd(opts *GlobalOptions, outputFn func() *Output) *cobra.Command {
	var rtOpts RuntimeOptions
	var schedOpts scheduleOptions

	cmd := &cobra.Command{
		Use:   "schedule FILE",
		Short: "Execute a command file repeatedly on a cron expression or interval",
		Long: `Execute FILE on every trigger until interrupted.

Each run starts from the original command definitions with an empty result
store. With --stop-on-failure the first failed run stops the schedule and
the process exits with code 1.`,
		Example: `  invoker schedule smoke.yaml --every 5m --immediate
  invoker schedule nightly.json --cron "0 3 * * *" --timezone Europe/Moscow --journal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := outputFn()

			trigger, err := schedOpts.trigger()
			if err != nil {
				return err
			}

			env, err := LoadEnv(opts)
			if err != nil {
				return err
			}

			file, err := loadFile(args[0])
			if err != nil {
				return err
			}

			rt, err := NewRuntime(ctx, env, file, rtOpts)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					env.Logger.Warn("failed to close runtime", "error", err)
				}
			}()

			if schedOpts.metricsAddr != "" {
				srv := &http.Server{
					Addr:              schedOpts.metricsAddr,
					Handler:           metricsMux(rt),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					env.Logger.Info("metrics server started", "addr", schedOpts.metricsAddr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						env.Logger.Error("metrics server failed", "error", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			sched := scheduler.New(scheduler.Config{
				Runner:        &reportingRunner{runtime: rt, out: out},
				Trigger:       trigger,
				Source:        args[0],
				StopOnFailure: schedOpts.stopOnFailure,
				MaxRuns:       schedOpts.maxRuns,
				Immediate:     schedOpts.immediate,
				Logger:        env.Logger,
			})

			stats, err := sched.Run(ctx, file.Commands)
			out.Success(fmt.Sprintf("Schedule finished: %d runs, %d succeeded, %d failed",
				stats.Runs, stats.Succeeded, stats.Failed))
			return err
		},
	}

	cmd.Flags().StringVar(&schedOpts.cron, "cron", "", "Cron expression (5 fields or @hourly, @daily, ...)")
	cmd.Flags().DurationVar(&schedOpts.every, "every", 0, "Fixed interval between runs (e.g. 30s, 5m)")
	cmd.Flags().StringVar(&schedOpts.timezone, "timezone", "UTC", "Timezone for --cron")
	cmd.Flags().BoolVar(&schedOpts.stopOnFailure, "stop-on-failure", false, "Stop after the first failed run")
	cmd.Flags().IntVar(&schedOpts.maxRuns, "max-runs", 0, "Stop after N runs (0 = unlimited)")
	cmd.Flags().BoolVar(&schedOpts.immediate, "immediate", false, "Run once right away, then follow the schedule")
	cmd.Flags().StringVar(&schedOpts.metricsAddr, "metrics-addr", "", "Serve Prometheus /metrics on this address")
	rtOpts.bind(cmd)

	return cmd
}

func metricsMux(rt *Runtime) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.Metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
