package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output     string // output file, stdout when empty
	format     string // dot or svg
	showHidden bool   // draw nodes hidden by the visibility toggle
}

// renderCommand exports the chart as Graphviz DOT or SVG.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart to SVG or DOT",
		Long: `Render the saved chart (or the seed, when nothing is saved) with Graphviz.

Nodes keep their canvas positions; departments are drawn behind their
members. Use --format dot to get the Graphviz source instead of SVG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			return c.runRender(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.showHidden, "show-hidden", false, "include hidden nodes, drawn dashed")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer ws.close(logger)

	snap := ws.sess.Snapshot()
	prog := newProgress(logger)
	dot := render.ToDOT(snap, render.Options{ShowHidden: opts.showHidden})

	out := []byte(dot)
	if opts.format == formatSVG {
		spinner := newSpinner(ctx, os.Stderr, "Laying out chart...")
		spinner.Start()
		out, err = render.RenderSVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render svg: %w", err)
		}
		spinner.Stop()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	prog.done(fmt.Sprintf("Rendered %d nodes", len(snap.Nodes)))

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}

	printSuccess("Rendered %s", opts.format)
	printFile(opts.output)
	fmt.Println(statsLine(snap, ws.origin))
	return nil
}
