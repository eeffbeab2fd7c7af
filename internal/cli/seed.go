package cli

import (
	"github.com/spf13/cobra"

	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/graph"
	"github.com/matzehuels/orgchart/pkg/seed"
)

// seedCommand prints the seed chart without touching storage.
func (c *CLI) seedCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Print the seed chart",
		Long: `Print the chart a new session starts from.

With --seed FILE the YAML file is validated and converted; otherwise the
built-in sample organization is used. --format yaml prints the seed data
itself, ready to be edited and passed back with --seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := seed.Builtin()
			if c.seedFile != "" {
				var err error
				if data, err = seed.LoadFile(c.seedFile); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			switch format {
			case "json":
				return graph.Write(data.Snapshot(), w)
			case "yaml":
				return seed.Write(w, data)
			}
			return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "invalid format: %s (must be 'json' or 'yaml')", format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json (default), yaml")
	return cmd
}
