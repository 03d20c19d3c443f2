package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/go-moodbeats/internal/recommend"
)

var (
	analyzeContext  string
	analyzeLimit    int
	analyzeExplicit bool
	analyzeUser     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <mood description>",
	Short: "Analyze a mood and print song recommendations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.service(ctx)
		if err != nil {
			return err
		}

		resp, err := svc.Recommend(ctx, recommend.Request{
			Username:        analyzeUser,
			Description:     strings.Join(args, " "),
			Context:         analyzeContext,
			IncludeExplicit: analyzeExplicit,
			Limit:           analyzeLimit,
		})
		if err != nil {
			return err
		}
		printResponse(resp)
		return nil
	},
}

func printResponse(resp *recommend.Response) {
	an := resp.Analysis
	fmt.Printf("Analysis %s\n", an.ID)
	if an.Fallback {
		fmt.Println("  (analyzer unavailable, neutral defaults used)")
	}
	fmt.Printf("  %s\n", resp.Summary())
	if len(an.Emotions) > 0 {
		fmt.Printf("  Emotions: %s\n", strings.Join(an.Emotions, ", "))
	}
	if len(resp.Genres) > 0 {
		fmt.Printf("  Genres: %s\n", strings.Join(resp.Genres, ", "))
	}
	if an.Insight != "" {
		fmt.Printf("  %s\n", an.Insight)
	}

	if len(resp.Recommendations) == 0 {
		fmt.Println("\nNo matching songs")
		return
	}
	fmt.Println()
	for _, item := range resp.Recommendations {
		fmt.Printf("%2d. %s (%.2f, %s)\n", item.Rank, item.Song.DisplayName(), item.Score, item.Strength())
		fmt.Printf("    %s\n", item.Reason)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeContext, "context", "", "Situation, e.g. \"studying\"")
	analyzeCmd.Flags().IntVarP(&analyzeLimit, "limit", "n", 10, "Maximum number of songs")
	analyzeCmd.Flags().BoolVar(&analyzeExplicit, "explicit", false, "Include explicit songs")
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "Username (default demo_user)")
}
