package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/invoker/internal/capability"
)

// capabilityRow — capability для JSON вывода.
type capabilityRow struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// NewCapabilitiesCmd создаёт команду списка capability.
func NewCapabilitiesCmd(opts *GlobalOptions, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List available objectType.method pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			env, err := LoadEnv(opts)
			if err != nil {
				return err
			}

			reg, err := capability.Default(cmd.Context(), env.CapabilityConfig())
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			names := reg.Names()
			rows := make([][]string, len(names))
			data := make([]capabilityRow, len(names))
			for i, name := range names {
				family, _, _ := strings.Cut(name, ".")
				version := reg.Version(family)
				rows[i] = []string{name, dash(version)}
				data[i] = capabilityRow{Name: name, Version: version}
			}

			out.Print([]string{"CAPABILITY", "API_VERSION"}, rows, data)
			return nil
		},
	}
}
