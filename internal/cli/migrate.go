package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		// Opening the store already migrated it.
		fmt.Printf("Schema up to date (%s)\n", a.cfg.StorageDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
