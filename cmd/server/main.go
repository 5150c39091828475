// Command salon runs the salon booking API, its event consumer and the
// schema migration.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "salon",
	Short: "Salon booking backend",
	Long:  "Booking calendar, checkout, tickets and staff shifts for a small salon.",
}

func init() {
	rootCmd.AddCommand(
		newServeCommand(),
		newConsumeCommand(),
		newMigrateCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
