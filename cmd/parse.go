// File: cmd/parse.go
package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeclip/pkg/blob"
	"codeclip/pkg/ui"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse code blocks from the clipboard",
	Long: `Read a blob in the "=== path ===" format from the clipboard (or --input) and
split it into code blocks. --show prints every block with syntax highlighting and
--compare reports whether each block matches the file at its path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := cmd.Flags().GetString("input")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		show, err := cmd.Flags().GetBool("show")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		compareDir, err := cmd.Flags().GetString("compare")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		theme, err := cmd.Flags().GetString("theme")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}

		text, err := readInput(cmd, input)
		if err != nil {
			return err
		}

		blocks := blob.Parse(text)
		app.Logger.Info("Parsed code blocks", zap.Int("count", len(blocks)))
		out := cmd.OutOrStdout()
		if len(blocks) == 0 {
			ui.Warn(cmd.ErrOrStderr(), "No code blocks found")
			return nil
		}
		ui.Success(cmd.ErrOrStderr(), "Parsed %d code blocks", len(blocks))

		if show {
			for _, block := range blocks {
				fmt.Fprintln(out, ui.Info.Render(blob.Header(block.Path)))
				if err := ui.Highlight(out, block.Code+"\n", block.Filename, theme); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
		}

		if compareDir != "" {
			root, err := filepath.Abs(compareDir)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", compareDir, err)
			}
			printComparison(out, blob.Compare(app.Fs, root, blocks))
		}
		return nil
	},
}

func readInput(cmd *cobra.Command, input string) (string, error) {
	switch input {
	case "":
		return app.Clipboard.ReadText()
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := afero.ReadFile(app.Fs, input)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", input, err)
		}
		return string(data), nil
	}
}

func printComparison(w io.Writer, comparisons []blob.Comparison) {
	for _, c := range comparisons {
		label := fmt.Sprintf("%-10s", c.Status)
		switch c.Status {
		case blob.StatusIdentical:
			label = ui.Green.Render(label)
		case blob.StatusModified:
			label = ui.Yellow.Render(label)
		default:
			label = ui.Red.Render(label)
		}
		fmt.Fprintf(w, "%s %s\n", label, c.Block.Path)
	}

	counts := blob.Summarize(comparisons)
	fmt.Fprintln(w, ui.Muted.Render(fmt.Sprintf("%d identical, %d modified, %d missing, %d unreadable",
		counts[blob.StatusIdentical], counts[blob.StatusModified],
		counts[blob.StatusMissing], counts[blob.StatusUnreadable])))
}

func init() {
	parseCmd.Flags().StringP("input", "i", "", "Read from a file instead of the clipboard (- for stdin)")
	parseCmd.Flags().Bool("show", false, "Print the parsed blocks with syntax highlighting")
	parseCmd.Flags().String("compare", "", "Compare the blocks against the files under this directory")
	parseCmd.Flags().String("theme", ui.DefaultTheme, "Highlighting theme used by --show")
	RootCmd.AddCommand(parseCmd)
}
