package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/service"
	"github.com/yonixw/pullpush-io-all-user-messages/internal/store"
)

var (
	harvestBefore  int64
	harvestTimeout time.Duration
	harvestReport  bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest <username>",
	Short: "Harvest a user's comments and print them",
	Long: `Harvest pages backwards through a user's comment history and prints
the result to stdout, as JSON by default or as an HTML report with --report.

Examples:
  # Everything reachable in 25 seconds, newest first
  pullpush-archive harvest spez

  # Continue from a cursor printed by a previous run, for two minutes
  pullpush-archive harvest spez --before 1262304000 --timeout 2m

  # Human readable report
  pullpush-archive harvest spez --report > spez.html`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	harvestCmd.Flags().Int64VarP(&harvestBefore, "before", "b", 0, "Start cursor in unix seconds (default: now)")
	harvestCmd.Flags().DurationVarP(&harvestTimeout, "timeout", "t", 0, "Harvest budget (default from config)")
	harvestCmd.Flags().BoolVar(&harvestReport, "report", false, "Print an HTML report instead of JSON")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			logger.Info("Received interrupt signal, stopping harvest")
			cancel()
		case <-ctx.Done():
		}
	}()

	var recorder service.RunRecorder
	if cfg.DatabaseURL != "" {
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		recorder = store.NewRunStore(db)
	}

	harvester := newHarvester(newClient(), recorder)

	req := service.HarvestRequest{
		Username: args[0],
		Budget:   harvestTimeout,
		Before:   harvestBefore,
		Mode:     service.ModeStructured,
	}
	out := cmd.OutOrStdout()

	if harvestReport {
		req.Mode = service.ModeReport
		proj := service.NewReportProjector(out)
		if _, err := harvester.Harvest(ctx, req, proj); err != nil {
			return harvestError(err)
		}
		return proj.Err()
	}

	proj := service.NewStructuredProjector()
	if _, err := harvester.Harvest(ctx, req, proj); err != nil {
		return harvestError(err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(proj.Output())
}

func harvestError(err error) error {
	var te *service.TransportError
	if errors.As(err, &te) {
		return fmt.Errorf("upstream unreachable: %w", err)
	}
	return err
}
