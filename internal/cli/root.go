// Package cli implements the moodbeats command line.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagDriver      string
	flagDatabaseURL string
	flagSQLitePath  string
	flagLogLevel    string
	flagLogFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "moodbeats",
	Short: "Turn how you feel into music recommendations",
	Long: `moodbeats analyzes free-text mood descriptions with an LLM, maps them to
energy, arousal and valence levels, and ranks a song catalog against them.`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDriver, "driver", "", "Storage driver: sqlite or postgres (env MOODBEATS_STORAGE_DRIVER)")
	pf.StringVar(&flagDatabaseURL, "database-url", "", "Postgres connection URL (env DATABASE_URL)")
	pf.StringVar(&flagSQLitePath, "sqlite-path", "", "SQLite database file (env MOODBEATS_SQLITE_PATH)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (env MOODBEATS_LOG_LEVEL)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format: json or console (env MOODBEATS_LOG_FORMAT)")
}
