package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, Version)
				return nil
			}
			fmt.Fprintf(w, "spymux version %s\n", Version)
			fmt.Fprintf(w, "  commit:    %s\n", Commit)
			fmt.Fprintf(w, "  built:     %s\n", Date)
			fmt.Fprintf(w, "  go:        %s\n", runtime.Version())
			fmt.Fprintf(w, "  platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}
