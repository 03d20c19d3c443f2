package cli

import (
	"github.com/spf13/cobra"

	"github.com/justestif/go-moodbeats/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
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

		addr := a.cfg.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		server := web.NewServer(web.ServerConfig{Addr: addr, Version: Version}, svc, a.logger)
		return server.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (env MOODBEATS_ADDR)")
}
