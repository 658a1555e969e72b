package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"codeclip/pkg/scan"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Spinner is a running activity indicator; the zero value is a no-op.
type Spinner struct {
	printer *pterm.SpinnerPrinter
}

// StartSpinner shows text with a spinner when enabled.
func StartSpinner(text string, enabled bool) *Spinner {
	if !enabled {
		return &Spinner{}
	}
	printer, err := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100 * time.Millisecond).
		WithRemoveWhenDone(true).
		WithWriter(os.Stderr).
		Start(text)
	if err != nil {
		return &Spinner{}
	}
	return &Spinner{printer: printer}
}

// Stop removes the spinner.
func (s *Spinner) Stop() {
	if s == nil || s.printer == nil {
		return
	}
	_ = s.printer.Stop()
}

// Confirm asks a yes/no question on the terminal.
func Confirm(question string, defaultValue bool) (bool, error) {
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(defaultValue).Show(question)
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return ok, nil
}

// ReadProgress returns a progress callback drawing a bar on stderr, or nil when disabled.
func ReadProgress(total int, enabled bool) scan.ProgressFunc {
	if !enabled || total == 0 {
		return nil
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Reading files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return func(done, _ int) {
		_ = bar.Set(done)
		if done == total {
			_ = bar.Finish()
		}
	}
}
