package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/config"
	"github.com/yonixw/pullpush-io-all-user-messages/internal/logx"
	"github.com/yonixw/pullpush-io-all-user-messages/internal/service"
)

var version = "dev"

var (
	flagConfig string
	cfg        *config.Config
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pullpush-archive",
	Short: "Harvest a reddit user's full comment history from pullpush.io",
	Long: `pullpush-archive pages through the pullpush.io comment search API,
which caps every response at 100 records, and stitches the pages into a
user's complete comment history within a time budget.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env file is normal.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		logger = logx.Init(cfg.Log.Level, cfg.Log.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pullpush-archive %s\n", version)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient() *service.PullpushClient {
	return service.NewPullpushClient(service.ClientOptions{
		CommentsURL: cfg.Upstream.CommentsURL,
		Timeout:     cfg.UpstreamTimeout(),
		UserAgent:   cfg.Upstream.UserAgent,
		MinInterval: cfg.UpstreamMinInterval(),
	})
}

func newHarvester(client service.PageFetcher, recorder service.RunRecorder) *service.Harvester {
	return service.NewHarvester(client, service.HarvesterOptions{
		DefaultBudget: cfg.DefaultBudget(),
		MaxBudget:     cfg.MaxBudget(),
		PageSizeMin:   cfg.Harvest.PageSizeMin,
		PageSizeMax:   cfg.Harvest.PageSizeMax,
		Recorder:      recorder,
		Logger:        logger,
	})
}
