package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd создаёт корневую команду invoker со всеми подкомандами.
func NewRootCmd(version string) *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:           "invoker",
		Short:         "Invoker — run sequential capability commands from a file",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	flags.StringArrayVar(&opts.EnvFiles, "env-file", nil, "Load directive variables from a .env file (repeatable)")
	flags.StringVar(&opts.Vars, "vars", "", "Inline directive variables as K=V,K2=V2")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR (default LOG_LEVEL)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "Log format: text or json (default LOG_FORMAT)")

	outputFn := func() *Output {
		return NewOutputTo(opts.JSON, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		NewRunCmd(opts, outputFn),
		NewValidateCmd(opts, outputFn),
		NewCapabilitiesCmd(opts, outputFn),
		NewScheduleCmd(opts, outputFn),
		NewHistoryCmd(opts, outputFn),
	)

	return rootCmd
}
