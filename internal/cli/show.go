package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/graph"
	"github.com/matzehuels/orgchart/pkg/registry"
)

// showCommand prints the chart as a table, or as chart JSON with --json.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			ws, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer ws.close(logger)

			snap := ws.sess.Snapshot()
			if asJSON {
				return graph.Write(snap, cmd.OutOrStdout())
			}

			loc, err := ws.cfg.location()
			if err != nil {
				return err
			}
			printKeyValue("Key", ws.sess.Key())
			printKeyValue("Location", loc)
			st := ws.adapter.Status()
			if st.OK() && st.Digest != "" {
				printKeyValue("Digest", st.Digest[:12])
			}
			if pkgerrors.Is(st.Err, pkgerrors.ErrCodeCorrupt) {
				printWarning("Stored chart is corrupt, showing the seed")
			}
			fmt.Println(statsLine(snap, ws.origin))
			printNewline()
			if len(snap.Nodes) > 0 {
				fmt.Println(nodeTable(snap, ws.sess.Registry()))
			}

			ec, hasEdge := ws.sess.Registry().Edge(registry.DefaultEdgeType)
			for _, e := range snap.Edges {
				label := e.Source + " -> " + e.Target
				if hasEdge && ec.Render != nil {
					label = ec.Render(e)
				}
				printDetail("%s  %s", e.ID, label)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the chart document as JSON")
	return cmd
}

// pathCommand prints where the chart is stored.
func (c *CLI) pathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the storage location of the chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			loc, err := cfg.location()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), loc)
			return err
		},
	}
}

// resetCommand deletes the saved chart so the next session starts from
// the seed.
func (c *CLI) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReset(cmd.Context())
		},
	}
}

func (c *CLI) runReset(ctx context.Context) error {
	logger := loggerFromContext(ctx)
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer ws.close(logger)

	if err := ws.adapter.Delete(ctx, ws.sess.Key()); err != nil {
		return fmt.Errorf("delete %s: %w", ws.sess.Key(), err)
	}
	printSuccess("Deleted chart %s", ws.sess.Key())
	printNextStep("Start over", appName+" edit")
	return nil
}
