package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/invoker/internal/capability"
	"github.com/shaiso/invoker/internal/engine"
)

// validationRow — одна ошибка проверки для JSON вывода.
type validationRow struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidateCmd создаёт команду статической проверки файла команд.
func NewValidateCmd(opts *GlobalOptions, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a command file without executing it",
		Long: `Check every directive, resultsID and capability in FILE.

Reports malformed directives, references to results not published by an
earlier command, duplicate resultsIDs and unknown capabilities.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			env, err := LoadEnv(opts)
			if err != nil {
				return err
			}

			file, err := engine.LoadCommandFile(args[0])
			if err != nil {
				return err
			}

			reg, err := capability.Default(cmd.Context(), env.CapabilityConfig())
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			errs := checkFile(file, reg)
			if len(errs) == 0 {
				out.Success(fmt.Sprintf("%s: %d commands OK", args[0], len(file.Commands)))
				return nil
			}

			headers := []string{"#", "FIELD", "ERROR"}
			rows := make([][]string, len(errs))
			data := make([]validationRow, len(errs))
			for i, e := range errs {
				index := "-"
				if e.Index >= 0 {
					index = strconv.Itoa(e.Index)
				}
				rows[i] = []string{index, e.Field, e.Message}
				data[i] = validationRow{Index: e.Index, Field: e.Field, Message: e.Message}
			}
			out.Print(headers, rows, data)

			return fmt.Errorf("%w: %d problems", ErrInvalidFile, len(errs))
		},
	}
}
