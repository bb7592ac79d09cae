package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spymux/spymux/internal/output"
	"github.com/spymux/spymux/internal/panes"
	"github.com/spymux/spymux/internal/tmux"
)

// paneRow is one pane as printed by `spymux list`.
type paneRow struct {
	ID         string `json:"id" yaml:"id"`
	Descriptor string `json:"descriptor" yaml:"descriptor"`
	Command    string `json:"command" yaml:"command"`
	Path       string `json:"path" yaml:"path"`
}

type paneList []paneRow

func (l paneList) Text(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPANE\tCOMMAND\tPATH")
	for _, r := range l {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Descriptor, r.Command, r.Path)
	}
	return tw.Flush()
}

func (l paneList) Data() any {
	if l == nil {
		return []paneRow{}
	}
	return []paneRow(l)
}

func newListCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the panes the dashboard would show",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			ps, err := client.ListPanes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list tmux panes: %w", err)
			}

			state := panes.New()
			if cfg.Tmux.Remote == "" {
				state.Exclude(tmux.CurrentPaneID())
			}
			state.Refresh(ps)

			var rows paneList
			for _, p := range state.Panes() {
				rows = append(rows, paneRow{ID: p.ID, Descriptor: p.Descriptor(), Command: p.Command, Path: p.Path})
			}
			return output.New(output.WithFormat(f), output.WithWriter(cmd.OutOrStdout())).Output(rows)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	return cmd
}
