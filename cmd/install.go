package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/statusline/internal/install"
)

var (
	installSettings string
	installCommand  string
	installPadding  int
	installRemove   bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register statusline as the host's status line command",
	Long: `Writes a statusLine block of type "command" into the host's settings
file, keeping every other setting. Re-running replaces the previous block.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := installSettings
		if path == "" {
			p, err := install.SettingsPath()
			if err != nil {
				return err
			}
			path = p
		}

		if installRemove {
			removed, err := install.Uninstall(path)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "No status line configured in %s\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  ✓ Status line removed from %s\n", path)
			return nil
		}

		command := installCommand
		if command == "" {
			c, err := install.DefaultCommand()
			if err != nil {
				return err
			}
			command = c
		}
		// Install reports unreadable settings; a bad old block is just replaced.
		previous, _ := install.Current(path)
		if err := install.Install(path, command, installPadding); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  ✓ Status line installed in %s\n", path)
		if previous != nil && previous.Command != "" && previous.Command != command {
			fmt.Fprintf(cmd.OutOrStdout(), "    replaced: %s\n", previous.Command)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "    command: %s\n", command)
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&installSettings, "settings", "", "Settings file to update (default ~/.claude/settings.json)")
	installCmd.Flags().StringVar(&installCommand, "command", "", "Command the host runs (default: this binary with \"render\")")
	installCmd.Flags().IntVar(&installPadding, "padding", 0, "Padding around the status line")
	installCmd.Flags().BoolVar(&installRemove, "remove", false, "Remove the status line block instead")
	rootCmd.AddCommand(installCmd)
}
