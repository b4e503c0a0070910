package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/handlers"
	"github.com/yonixw/pullpush-io-all-user-messages/internal/service"
	"github.com/yonixw/pullpush-io-all-user-messages/internal/store"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the archive web server",
	Long:  `Start the web server exposing the first, latest and greedy harvest endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port == "" {
			port = cfg.Server.Port
		}

		// Harvests are cancelled when the server shuts down.
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		var recorder service.RunRecorder
		var runs handlers.RunLister
		if cfg.DatabaseURL != "" {
			db, err := store.NewDB(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			runStore := store.NewRunStore(db)
			recorder = runStore
			runs = runStore
			logger.Info("Recording harvest runs in database")
		}

		client := newClient()
		harvester := newHarvester(client, recorder)

		app := handlers.NewApp(ctx, cfg.Server.AppName, client, harvester, runs)

		go func() {
			<-ctx.Done()
			logger.Info("Shutting down server")
			_ = app.Shutdown()
		}()

		logger.Info("Starting server", "port", port, "upstream", client.CommentsURL())
		return app.Listen(":" + port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to run the server on (default from config or PORT)")
}
