package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRunCmd создаёт команду выполнения файла команд.
func NewRunCmd(opts *GlobalOptions, outputFn func() *Output) *cobra.Command {
	var rtOpts RuntimeOptions

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a command file once",
		Long: `Execute the commands of FILE (.json, .yaml, .toml) in order.

The first failing command stops the run. Exit code is 0 when every command
succeeded and its expected results matched, 1 otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := outputFn()

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

			run := rt.Orchestrator.Execute(ctx, args[0], file.Commands)
			rt.PushMetrics(ctx)

			out.Report(run)
			if !run.Succeeded() {
				return fmt.Errorf("%w: %s", ErrRunFailed, run.Error)
			}
			return nil
		},
	}

	rtOpts.bind(cmd)
	return cmd
}
