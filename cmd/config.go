// File: cmd/config.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codeclip/pkg/config"
	"codeclip/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the filter configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Long: `Print the effective configuration, including CODECLIP_* environment overrides.
--json prints the stored document instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		svc, path, err := configService(cmd)
		if err != nil {
			return err
		}
		if asJSON {
			data, err := config.Marshal(svc.Stored())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Box("Configuration", describeConfig(svc.Get(), path)))
		return nil
	},
}

func describeConfig(cfg config.FilterConfiguration, path string) string {
	list := func(values []string) string {
		if len(values) == 0 {
			return ui.Muted.Render("(none)")
		}
		return strings.Join(values, ", ")
	}
	lines := []string{
		"file:                      " + path,
		fmt.Sprintf("includeGlobalExtensions:   %t", cfg.IncludeGlobalExtensions),
		fmt.Sprintf("filterUsingVersionControl: %t", cfg.FilterUsingVersionControl),
		"projectTypes:              " + list(cfg.ProjectTypes),
		"globalExtensions:          " + list(cfg.GlobalExtensions),
		"globalBlacklistPatterns:   " + list(cfg.GlobalBlacklistPatterns),
		fmt.Sprintf("largeResultThreshold:      %d", cfg.LargeResultThreshold),
		fmt.Sprintf("maxFileSizeKB:             %d", cfg.MaxFileSizeKB),
		"",
		ui.Info.Render("Effective filters"),
		"extensions: " + list(cfg.AllowedExtensions().Sorted()),
		"blacklist:  " + list(cfg.BlacklistPatterns()),
	}
	return strings.Join(lines, "\n")
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, path, err := configService(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := configService(cmd)
		if err != nil {
			return err
		}
		if _, err := svc.Reset(); err != nil {
			return err
		}
		ui.Success(cmd.OutOrStdout(), "Configuration reset to defaults")
		return nil
	},
}

var configToggleCmd = &cobra.Command{
	Use:   "toggle SETTING",
	Short: "Flip includeGlobalExtensions or filterUsingVersionControl",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := configService(cmd)
		if err != nil {
			return err
		}
		value, err := svc.Toggle(args[0])
		if err != nil {
			return err
		}
		state := "disabled"
		if value {
			state = "enabled"
		}
		ui.Success(cmd.OutOrStdout(), "%s %s", args[0], state)
		return nil
	},
}

var projectTypeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known project types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := configService(cmd)
		if err != nil {
			return err
		}
		cfg := svc.Get()
		active := make(map[string]bool, len(cfg.ProjectTypes))
		for _, pt := range cfg.ProjectTypes {
			active[pt] = true
		}
		for _, name := range cfg.KnownProjectTypes() {
			marker := " "
			if active[name] {
				marker = ui.Green.Render("*")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %s\n", marker, name,
				ui.Muted.Render(strings.Join(cfg.CustomExtensionsByProjectType[name], " ")))
		}
		return nil
	},
}

// mutation describes one add/remove configuration command.
type mutation struct {
	use    string
	short  string
	scoped bool // Accepts --project-type.
	apply  func(svc *config.Service, value, projectType string) error
	done   string // Success message; %s is the value.
}

func (m mutation) command() *cobra.Command {
	c := &cobra.Command{
		Use:   m.use,
		Short: m.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectType := ""
			if m.scoped {
				var err error
				if projectType, err = cmd.Flags().GetString("project-type"); err != nil {
					return fmt.Errorf("error reading flags: %w", err)
				}
			}
			svc, _, err := configService(cmd)
			if err != nil {
				return err
			}
			if err := m.apply(svc, args[0], projectType); err != nil {
				return err
			}
			msg := fmt.Sprintf(m.done, args[0])
			if projectType != "" {
				msg += " for project type " + projectType
			}
			ui.Success(cmd.OutOrStdout(), "%s", msg)
			return nil
		},
	}
	if m.scoped {
		c.Flags().StringP("project-type", "p", "", "Apply to this project type instead of the global list")
	}
	return c
}

func group(use, short string, children ...*cobra.Command) *cobra.Command {
	c := &cobra.Command{Use: use, Short: short}
	c.AddCommand(children...)
	return c
}

func init() {
	configShowCmd.Flags().Bool("json", false, "Print the raw JSON document")

	projectTypeCmd := group("project-type", "Manage active project types",
		projectTypeListCmd,
		mutation{
			use: "add NAME", short: "Activate a project type",
			apply: func(svc *config.Service, v, _ string) error { return svc.AddProjectType(v) },
			done:  "Project type %s added",
		}.command(),
		mutation{
			use: "remove NAME", short: "Deactivate a project type",
			apply: func(svc *config.Service, v, _ string) error { return svc.RemoveProjectType(v) },
			done:  "Project type %s removed",
		}.command(),
	)

	extensionCmd := group("extension", "Manage allowed file extensions",
		mutation{
			use: "add EXT", short: "Allow an extension", scoped: true,
			apply: (*config.Service).AddExtension,
			done:  "Extension %s added",
		}.command(),
		mutation{
			use: "remove EXT", short: "Disallow an extension", scoped: true,
			apply: (*config.Service).RemoveExtension,
			done:  "Extension %s removed",
		}.command(),
	)

	blacklistCmd := group("blacklist", "Manage blacklist patterns",
		mutation{
			use: "add PATTERN", short: "Exclude paths matching a pattern", scoped: true,
			apply: (*config.Service).AddBlacklistPattern,
			done:  "Blacklist pattern %s added",
		}.command(),
		mutation{
			use: "remove PATTERN", short: "Remove a blacklist pattern", scoped: true,
			apply: (*config.Service).RemoveBlacklistPattern,
			done:  "Blacklist pattern %s removed",
		}.command(),
	)

	configCmd.AddCommand(configShowCmd, configPathCmd, configResetCmd, configToggleCmd,
		projectTypeCmd, extensionCmd, blacklistCmd)
	RootCmd.AddCommand(configCmd)
}
