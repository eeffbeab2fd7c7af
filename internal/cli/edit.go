package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// editCommand opens the interactive editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the chart in the terminal",
		Long: `Open the chart in an interactive editor.

The chart is loaded from the configured storage backend, or built from the
seed when nothing is saved yet. Changes stay in memory until saved with s.
Press ? inside the editor for the full key list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context())
		},
	}
}

func (c *CLI) runEdit(ctx context.Context) error {
	logger := loggerFromContext(ctx)
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer ws.close(logger)

	logger.Debug("editor starting", "key", ws.sess.Key(), "origin", ws.origin, "nodes", ws.sess.Engine().Len())

	// Log lines would tear the alternate screen; replay them on exit.
	captured := captureLogs(logger, os.Stderr)
	m := NewEditorModel(ctx, ws.sess, ws.origin)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	captured.release()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run editor: %w", err)
	}

	if ws.sess.Dirty() {
		printWarning("Chart has unsaved changes")
		return nil
	}
	if st := ws.sess.LastStatus(); st.OK {
		printSuccess("%s", st.Message)
	}
	return nil
}
