// File: cmd/tree.go
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"codeclip/pkg/scan"
	"codeclip/pkg/ui"
)

var treeCmd = &cobra.Command{
	Use:   "tree [dir]",
	Short: "Show which files a copy would include",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args)
		if err != nil {
			return err
		}
		svc, _, err := configService(cmd)
		if err != nil {
			return err
		}

		scanner, err := newScanner(svc.Get(), root)
		if err != nil {
			return err
		}
		res, err := scanner.Scan(cmd.Context(), root)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), scan.RenderTree(filepath.Base(root), res.Files))
		fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(
			fmt.Sprintf("%d files included, %d entries filtered", len(res.Files), res.Skipped)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(treeCmd)
}
