package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/statusline/internal/config"
	"github.com/fakeyudi/statusline/internal/envfile"
	"github.com/fakeyudi/statusline/internal/logger"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var (
	debug      bool
	noColor    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "statusline",
	Short: "Render a color-coded status line for a coding-assistant session",
	Long: `statusline reads a JSON session snapshot on stdin and prints one
color-coded line: model, context usage, directory, git branch, version and
sandbox state. Every rendered line is recorded in an audit log.

Running statusline without a subcommand is the same as "statusline render".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, cfgErr := loadConfig()
		if cfgErr != nil && !degradesOnError(cmd) {
			return cfgErr
		}
		cfg = c

		_, envErr := envfile.Load(cfg.EnvFile)

		level := logger.LevelFromEnv()
		if debug {
			level = logger.LevelDebug
		}
		logger.Configure(cmd.ErrOrStderr(), level, true)

		if cfgErr != nil {
			logger.Debugf("loading config, using defaults: %v", cfgErr)
		}
		if envErr != nil {
			logger.Debugf("loading %s: %v", cfg.EnvFile, envErr)
		}
		return nil
	},
	RunE: runRender,
}

// loadConfig merges the global config with the project config, or with the
// file named by --config when given. On error the defaults are returned.
func loadConfig() (config.Config, error) {
	global, err := config.LoadGlobal()
	if err != nil {
		return config.Defaults(), err
	}
	var project *config.Config
	if configPath != "" {
		project, err = config.LoadFile(configPath)
	} else {
		project, err = config.LoadProject()
	}
	if err != nil {
		return config.Defaults(), err
	}
	return config.Merge(global, project), nil
}

// degradesOnError reports whether cmd must keep going on setup errors.
// The render path never fails the host.
func degradesOnError(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "render"
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln("Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Render without ANSI colors")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file to use instead of ./"+config.ProjectFile)
}
