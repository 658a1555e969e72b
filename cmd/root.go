package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeclip/pkg/clipboard"
	"codeclip/pkg/config"
	"codeclip/pkg/logging"
	"codeclip/pkg/ui"
	"codeclip/pkg/vcs"
	"codeclip/pkg/version"
)

// App holds the collaborators shared by every command.
type App struct {
	Logger      *zap.Logger
	Fs          afero.Fs
	Clipboard   clipboard.Clipboard
	Runner      vcs.Runner
	Interactive bool // Prompts, spinners and progress bars are allowed.
}

var app = &App{
	Logger:      zap.NewNop(),
	Fs:          afero.NewOsFs(),
	Clipboard:   clipboard.System{},
	Runner:      vcs.ExecRunner{},
	Interactive: ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stderr),
}

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "codeclip",
	Short: "codeclip copies filtered source files to the clipboard and parses them back",
	Long: `codeclip gathers the files of a workspace that pass the configured extension,
blacklist and version-control filters, joins them into one text blob with a
"=== path ===" header per file and puts it on the clipboard. The parse command
reads such a blob back into individual code blocks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, err := cmd.Flags().GetBool("debug")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		if debug {
			logger, err := logging.Setup(true, version.AppName, version.Version)
			if err != nil {
				return fmt.Errorf("failed to initialize debug logger: %w", err)
			}
			app.Logger = logger
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default <user config dir>/codeclip/config.json)")
	RootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// Execute runs the root command with the given logger and reports a failing command on stderr.
func Execute(logger *zap.Logger) error {
	app.Logger = logger
	err := RootCmd.ExecuteContext(context.Background())
	if err != nil {
		reportError(RootCmd.ErrOrStderr(), err)
	}
	return err
}

// reportError prints err for the user. Rejected input is expected; anything else is also logged.
func reportError(w io.Writer, err error) {
	if !config.IsValidationError(err) && !errors.Is(err, ErrConfirmationRequired) {
		app.Logger.Error("Command failed", zap.Error(err))
	}
	ui.Failure(w, "%v", err)
}

// configService opens the configuration named by --config, or the default location.
func configService(cmd *cobra.Command) (*config.Service, string, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("error reading flags: %w", err)
	}
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return nil, "", err
		}
	}
	repo := config.NewFileRepository(app.Fs, path, app.Logger)
	return config.NewService(repo, app.Logger, config.WithOverrides(config.EnvOverrides())), path, nil
}
