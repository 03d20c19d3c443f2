package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-moodbeats/internal/catalog"
	"github.com/justestif/go-moodbeats/internal/lastfm"
	"github.com/justestif/go-moodbeats/internal/spotify"
)

var (
	importPlaylist    string
	importConcurrency int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a Spotify playlist into the song catalog",
	Long: `Import fetches a public Spotify playlist with its audio features and adds
each track to the catalog. When LASTFM_API_KEY is set, Last.fm tags are used
to pick each song's genre.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		tracks, err := spotify.NewWithCredentials(ctx, a.cfg.SpotifyID, a.cfg.SpotifySecret)
		if err != nil {
			return fmt.Errorf("creating spotify client: %w", err)
		}

		opts := []catalog.Option{
			catalog.WithConcurrency(importConcurrency),
			catalog.WithLogger(a.logger),
		}
		tags, err := lastfm.NewClient(a.cfg.LastFMAPIKey)
		switch {
		case err == nil:
			opts = append(opts, catalog.WithTags(tags))
		case errors.Is(err, lastfm.ErrMissingAPIKey):
			fmt.Println("LASTFM_API_KEY not set, genres come from mood ranges only")
		default:
			return fmt.Errorf("creating last.fm client: %w", err)
		}

		fmt.Printf("Importing playlist %s...\n", importPlaylist)
		stats, err := catalog.NewImporter(tracks, a.store, opts...).Import(ctx, importPlaylist)
		if err != nil {
			return fmt.Errorf("importing playlist: %w", err)
		}
		fmt.Printf("Imported %d songs (%d skipped)\n", stats.Songs, stats.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importPlaylist, "playlist", "", "Spotify playlist ID")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 5, "Parallel Last.fm lookups")
	_ = importCmd.MarkFlagRequired("playlist")
}
