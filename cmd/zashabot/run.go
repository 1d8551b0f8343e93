package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/darumalabs/zashabot/internal/adspower"
	"github.com/darumalabs/zashabot/internal/browser"
	"github.com/darumalabs/zashabot/internal/config"
	"github.com/darumalabs/zashabot/internal/logging"
	"github.com/darumalabs/zashabot/internal/runner"
	"github.com/darumalabs/zashabot/internal/sheets"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Play the game on every profile listed in the sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runAutomation()
		},
	}
}

func runAutomation() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Info("configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First interrupt requests a graceful stop; in-flight profiles finish
	// their cleanup before the process exits. Further signals are ignored.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Warnf("received %v, stopping after in-flight profiles...", sig)
		cancel()
	}()

	gateway := adspower.NewClient(cfg.AdsPower.BaseURL)
	gateway.Headless = cfg.AdsPower.Headless

	recorder, err := sheets.New(ctx, sheets.Config{
		CredentialsFile: cfg.GoogleSheets.CredentialsFile,
		SpreadsheetID:   cfg.GoogleSheets.SpreadsheetID,
		SheetName:       cfg.GoogleSheets.SheetName,
		Columns:         cfg.GoogleSheets.Columns,
		DataStartRow:    cfg.GoogleSheets.DataStartRow,
	})
	if err != nil {
		return fmt.Errorf("init sheets: %w", err)
	}

	serials, err := recorder.ProfileIDs(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	if len(serials) == 0 {
		logging.Warn("no profiles found in sheet")
		return nil
	}
	logging.Infof("found %d profiles to process", len(serials))

	gameCfg := browser.Config{
		BaseURL:            cfg.Game.BaseURL,
		CollectionURL:      cfg.Game.CollectionURL,
		PageLoadTimeout:    cfg.Game.PageLoadTimeout(),
		ElementWaitTimeout: cfg.Game.ElementWaitTimeout(),
		AnimationMaxWait:   cfg.Game.AnimationMaxWait(),
	}

	r := &runner.Runner{
		Gateway:    gateway,
		Recorder:   recorder,
		NewDriver:  func() runner.Driver { return browser.NewDriver(gameCfg) },
		MaxWorkers: cfg.Threading.MaxWorkers,
	}

	outcomes := r.RunAll(ctx, serials)

	successes, failed := runner.Summarize(outcomes)
	logging.Infof("processing complete: %d/%d successful", successes, len(outcomes))
	if len(failed) > 0 {
		logging.Warnf("failed profiles: %s", strings.Join(failed, ", "))
	}
	return nil
}
