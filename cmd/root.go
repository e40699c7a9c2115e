package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nigerian-states/internal/config"
)

var cfg *config.Config

// modeAnnotation marks which config sections a command needs validated.
const modeAnnotation = "mode"

var rootCmd = &cobra.Command{
	Use:   "ngstates",
	Short: "Nigerian geopolitical zones, states and LGAs",
	Long: "Queries, loads, exports and serves the reference data for Nigeria's six geopolitical zones, " +
		"37 states (including the FCT) and 774 local government areas.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(commandMode(cmd)); err != nil {
			return eris.Wrap(err, "invalid config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// commandMode walks up from cmd to the first command carrying a mode.
func commandMode(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if m, ok := c.Annotations[modeAnnotation]; ok {
			return m
		}
	}
	return config.ModeQuery
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
