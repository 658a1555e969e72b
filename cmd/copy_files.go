// File: cmd/copy_files.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeclip/pkg/scan"
)

var copyFilesCmd = &cobra.Command{
	Use:   "copy-files FILE...",
	Short: "Copy an explicit list of files to the clipboard",
	Long: `Copy the given files, for example the ones open in an editor. Paths may be
absolute or relative to --root. The configured filters still apply unless --raw
is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readOutputFlags(cmd)
		if err != nil {
			return err
		}
		raw, err := cmd.Flags().GetBool("raw")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		rootFlag, err := cmd.Flags().GetString("root")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		root, err := resolveRoot([]string{rootFlag})
		if err != nil {
			return err
		}

		svc, _, err := configService(cmd)
		if err != nil {
			return err
		}
		cfg := svc.Get()

		var scanner *scan.Scanner
		if raw {
			scanner = scan.NewScanner(app.Fs, scan.UnfilteredRules(int64(cfg.MaxFileSizeKB)*1024), nil, app.Logger)
		} else if scanner, err = newScanner(cfg, root); err != nil {
			return err
		}

		res, err := scanner.ScanFiles(cmd.Context(), root, args)
		if err != nil {
			return fmt.Errorf("failed to collect files: %w", err)
		}
		return copyRecords(cmd, res, cfg, opts)
	},
}

func init() {
	addOutputFlags(copyFilesCmd)
	copyFilesCmd.Flags().Bool("raw", false, "Copy the files without applying any filter")
	copyFilesCmd.Flags().String("root", ".", "Directory the file paths and headers are relative to")
	RootCmd.AddCommand(copyFilesCmd)
}
