package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-moodbeats/internal/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in genre and song catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := catalog.Seed(cmd.Context(), a.store)
		if err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
		fmt.Printf("Seeded %d genres and %d songs\n", stats.Genres, stats.Songs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
