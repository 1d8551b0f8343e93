// zashabot plays the Zashapon collectible minigame across AdsPower browser
// profiles and records each profile's results in a Google sheet.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/darumalabs/zashabot/internal/logging"
)

var (
	configPath string
	quiet      bool
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "zashabot",
		Short: "Zashapon testnet automation across AdsPower profiles",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				logging.Disable()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
	root.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress log output")

	root.AddCommand(runCmd())
	root.AddCommand(doctorCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
