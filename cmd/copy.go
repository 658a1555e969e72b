// File: cmd/copy.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeclip/pkg/ui"
)

var copyCmd = &cobra.Command{
	Use:   "copy [dir]",
	Short: "Copy the filtered files of a directory to the clipboard",
	Long: `Scan a directory (the current one by default), keep the files allowed by the
configured extensions, blacklist and version-control filter, and copy them to
the clipboard as one blob with a "=== path ===" header per file.

Plain output is not fenced. When it is parsed back, a file that itself contains a
fenced code block (a Markdown README, for example) yields only the fenced part.
Use --fenced for trees like that so every file round-trips whole.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readOutputFlags(cmd)
		if err != nil {
			return err
		}
		root, err := resolveRoot(args)
		if err != nil {
			return err
		}
		svc, _, err := configService(cmd)
		if err != nil {
			return err
		}
		cfg := svc.Get()

		scanner, err := newScanner(cfg, root)
		if err != nil {
			return err
		}

		spinner := ui.StartSpinner(fmt.Sprintf("Scanning %s...", root), app.Interactive)
		res, err := scanner.Scan(cmd.Context(), root)
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		return copyRecords(cmd, res, cfg, opts)
	},
}

func init() {
	addOutputFlags(copyCmd)
	RootCmd.AddCommand(copyCmd)
}
