package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-moodbeats/internal/clustering"
	"github.com/justestif/go-moodbeats/internal/recommend"
)

var (
	regionsK       int
	regionsMinSize int
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Cluster the song catalog into mood regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		// Clustering never calls the analyzer.
		svc := recommend.New(a.store, nil, recommend.WithLogger(a.logger))
		res, err := svc.MoodRegions(ctx, clustering.RegionConfig{K: regionsK, MinRegionSize: regionsMinSize})
		if err != nil {
			return err
		}
		fmt.Print(clustering.FormatRegionSummary(res.Regions, res.OutlierCount))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
	def := clustering.DefaultRegionConfig()
	regionsCmd.Flags().IntVar(&regionsK, "k", def.K, "Number of clusters")
	regionsCmd.Flags().IntVar(&regionsMinSize, "min-size", def.MinRegionSize, "Smaller clusters are reported as outliers")
}
