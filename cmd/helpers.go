// File: cmd/helpers.go
package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeclip/pkg/blob"
	"codeclip/pkg/config"
	"codeclip/pkg/filter"
	"codeclip/pkg/scan"
	"codeclip/pkg/ui"
	"codeclip/pkg/vcs"
)

// ErrConfirmationRequired is returned when a large copy needs confirmation but no terminal
// is available and --yes was not given.
var ErrConfirmationRequired = errors.New("result exceeds the large-result threshold; rerun with --yes to proceed")

// outputOptions are the flags shared by the copying commands.
type outputOptions struct {
	output  string
	stdout  bool
	fenced  bool
	yes     bool
	workers int
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Write the result to a file instead of the clipboard")
	cmd.Flags().Bool("stdout", false, "Print the result instead of copying it")
	cmd.Flags().Bool("fenced", false, "Wrap each file in a fenced code block")
	cmd.Flags().BoolP("yes", "y", false, "Skip the large-result confirmation")
	cmd.Flags().IntP("workers", "w", 0, "Number of concurrent readers (default: number of CPUs)")
}

func readOutputFlags(cmd *cobra.Command) (outputOptions, error) {
	var opts outputOptions
	var err error
	if opts.output, err = cmd.Flags().GetString("output"); err != nil {
		return opts, fmt.Errorf("error reading flags: %w", err)
	}
	if opts.stdout, err = cmd.Flags().GetBool("stdout"); err != nil {
		return opts, fmt.Errorf("error reading flags: %w", err)
	}
	if opts.fenced, err = cmd.Flags().GetBool("fenced"); err != nil {
		return opts, fmt.Errorf("error reading flags: %w", err)
	}
	if opts.yes, err = cmd.Flags().GetBool("yes"); err != nil {
		return opts, fmt.Errorf("error reading flags: %w", err)
	}
	if opts.workers, err = cmd.Flags().GetInt("workers"); err != nil {
		return opts, fmt.Errorf("error reading flags: %w", err)
	}
	if opts.stdout && opts.output != "" {
		return opts, errors.New("--stdout and --output cannot be combined")
	}
	return opts, nil
}

// resolveRoot turns the optional directory argument into an absolute path.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 && args[0] != "" {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	return abs, nil
}

// newScanner builds a scanner from the current configuration plus the root's ignore file.
func newScanner(cfg config.FilterConfiguration, root string) (*scan.Scanner, error) {
	extra, err := filter.LoadIgnoreFile(app.Fs, filepath.Join(root, filter.IgnoreFileName), app.Logger)
	if err != nil {
		app.Logger.Warn("Ignoring unreadable ignore file", zap.String("root", root), zap.Error(err))
	}

	rules, err := scan.RulesFromConfig(cfg, extra...)
	if err != nil {
		return nil, err
	}
	tracker := vcs.NewTracker(app.Logger, vcs.WithRunner(app.Runner))
	return scan.NewScanner(app.Fs, rules, tracker, app.Logger), nil
}

// confirmLarge applies the large-result policy. It returns false when the user declines.
func confirmLarge(count, threshold int, yes bool) (bool, error) {
	if threshold <= 0 || count <= threshold || yes {
		return true, nil
	}
	if !app.Interactive {
		return false, fmt.Errorf("%d files selected (threshold %d): %w", count, threshold, ErrConfirmationRequired)
	}
	return ui.Confirm(fmt.Sprintf("%d files selected, more than the threshold of %d. Continue?", count, threshold), false)
}

// copyRecords reads the scanned files, serializes them and delivers the text.
func copyRecords(cmd *cobra.Command, res *scan.Result, cfg config.FilterConfiguration, opts outputOptions) error {
	status := cmd.ErrOrStderr()

	if len(res.Files) == 0 {
		ui.Warn(status, "No files matched the current filters")
		return nil
	}

	proceed, err := confirmLarge(len(res.Files), cfg.LargeResultThreshold, opts.yes)
	if err != nil {
		return err
	}
	if !proceed {
		ui.Warn(status, "Copy cancelled")
		return nil
	}

	reader := scan.NewReader(app.Fs, app.Logger,
		scan.WithWorkers(opts.workers),
		scan.WithProgress(ui.ReadProgress(len(res.Files), app.Interactive)))
	read := reader.Read(cmd.Context(), res.Files)
	if len(read.Files) == 0 {
		ui.Warn(status, "None of the %d selected files could be read", len(res.Files))
		return nil
	}

	text := blob.SerializeWith(read.Files, blob.Options{Fenced: opts.fenced})
	dest, err := deliver(cmd, text, opts)
	if err != nil {
		return err
	}

	ui.Success(status, "Copied %d files to %s", len(read.Files), dest)
	if n := res.WarningCount() + read.WarningCount(); n > 0 {
		ui.Warn(status, "%d files or directories were skipped because they could not be read", n)
	}
	app.Logger.Info("Copied files",
		zap.String("root", res.Root),
		zap.Int("files", len(read.Files)),
		zap.Int("filtered", res.Skipped),
		zap.Int("bytes", len(text)))
	return nil
}

// deliver writes text to stdout, a file or the clipboard and names the destination.
func deliver(cmd *cobra.Command, text string, opts outputOptions) (string, error) {
	switch {
	case opts.stdout:
		if _, err := fmt.Fprint(cmd.OutOrStdout(), text); err != nil {
			return "", fmt.Errorf("failed to write output: %w", err)
		}
		return "stdout", nil
	case opts.output != "":
		if err := afero.WriteFile(app.Fs, opts.output, []byte(text), 0o644); err != nil {
			app.Logger.Error("Failed to write file", zap.String("path", opts.output), zap.Error(err))
			return "", fmt.Errorf("failed to write %s: %w", opts.output, err)
		}
		return opts.output, nil
	default:
		if err := app.Clipboard.WriteText(text); err != nil {
			return "", err
		}
		return "the clipboard", nil
	}
}
