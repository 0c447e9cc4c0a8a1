package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/codesift/internal/config"
	"github.com/Aman-CERP/codesift/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the codesift configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/codesift/config.yaml)
  3. Project config (.codesift.yaml in the working directory)
  4. Environment variables (CODESIFT_*)
  5. Command-line flags`,
		Example: `  # Create user config with defaults
  codesift config init

  # Show effective configuration
  codesift config show --json`,
		Annotations: interactive(),
	}

	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOutput {
				return output.New(cmd.OutOrStdout()).JSON(a.cfg)
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file with defaults",
		Long: `Create the user configuration file with every setting at its default.

The file is created at ~/.config/codesift/config.yaml
(or $XDG_CONFIG_HOME/codesift/config.yaml if XDG_CONFIG_HOME is set).
With --force an existing file is backed up before it is overwritten.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration (keeps a backup)")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	_, statErr := os.Stat(configPath)
	exists := statErr == nil
	if exists && !force {
		out.Warning("User configuration already exists")
		out.Status("", "Location: "+configPath)
		out.Status("", "Use --force to overwrite it (a backup is kept)")
		return nil
	}

	var backupPath string
	if exists {
		var err error
		backupPath, err = config.BackupConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
	}

	if err := config.NewConfig().WriteYAML(configPath); err != nil {
		return err
	}

	out.Success("Created user configuration")
	out.Status("", "Location: "+configPath)
	if backupPath != "" {
		out.Status("", "Backup: "+backupPath)
	}
	return nil
}
