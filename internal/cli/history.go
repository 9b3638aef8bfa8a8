package cli

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/invoker/internal/repo"
)

// NewHistoryCmd создаёт группу команд чтения журнала runs.
func NewHistoryCmd(opts *GlobalOptions, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect runs recorded with --journal",
	}

	cmd.AddCommand(
		newHistoryListCmd(opts, outputFn),
		newHistoryShowCmd(opts, outputFn),
	)

	return cmd
}

func newHistoryListCmd(opts *GlobalOptions, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			journal, closeFn, err := openJournal(cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			runs, err := journal.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "SOURCE", "STATUS", "COMMANDS", "STARTED", "DURATION"}
			rows := make([][]string, len(runs))
			for i := range runs {
				r := &runs[i]
				rows[i] = []string{
					r.ID.String(),
					dash(r.Source),
					string(r.Status),
					strconv.Itoa(r.Total),
					formatTime(r.StartedAt),
					formatDuration(r.Duration()),
				}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")

	return cmd
}

func newHistoryShowCmd(opts *GlobalOptions, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a recorded run with its commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			journal, closeFn, err := openJournal(cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			run, err := journal.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}

			out.Report(run)
			return nil
		},
	}
}

// openJournal подключается к журналу по DB_URL.
func openJournal(cmd *cobra.Command, opts *GlobalOptions) (*repo.Journal, func(), error) {
	env, err := LoadEnv(opts)
	if err != nil {
		return nil, nil, err
	}

	pool, err := repo.NewPool(cmd.Context(), env.Settings.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	return repo.NewJournal(pool), pool.Close, nil
}
