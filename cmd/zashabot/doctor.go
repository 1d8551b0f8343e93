package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/darumalabs/zashabot/internal/adspower"
	"github.com/darumalabs/zashabot/internal/config"
	"github.com/darumalabs/zashabot/internal/sheets"
)

func doctorCmd() *cobra.Command {
	var serial string
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check AdsPower and spreadsheet connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runDoctor(serial, wait)
		},
	}

	cmd.Flags().StringVar(&serial, "serial", "", "also check whether this profile's browser is active")
	cmd.Flags().DurationVar(&wait, "wait", 0, "with --serial, wait up to this long for the profile to become active")

	return cmd
}

func runDoctor(serial string, wait time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Printf("[ok] config: %s\n", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gateway := adspower.NewClient(cfg.AdsPower.BaseURL)
	if err := gateway.Ping(ctx); err != nil {
		fmt.Printf("[fail] adspower: %v\n", err)
		return err
	}
	fmt.Printf("[ok] adspower: %s\n", cfg.AdsPower.BaseURL)

	if serial != "" {
		active := false
		if wait > 0 {
			active = gateway.WaitReady(ctx, serial, wait)
		} else {
			active, err = gateway.CheckActive(ctx, serial)
			if err != nil {
				fmt.Printf("[fail] profile %s: %v\n", serial, err)
				return err
			}
		}
		state := "inactive"
		if active {
			state = "active"
		}
		fmt.Printf("[ok] profile %s: %s\n", serial, state)
	}

	recorder, err := sheets.New(ctx, sheets.Config{
		CredentialsFile: cfg.GoogleSheets.CredentialsFile,
		SpreadsheetID:   cfg.GoogleSheets.SpreadsheetID,
		SheetName:       cfg.GoogleSheets.SheetName,
		Columns:         cfg.GoogleSheets.Columns,
		DataStartRow:    cfg.GoogleSheets.DataStartRow,
	})
	if err != nil {
		fmt.Printf("[fail] sheets: %v\n", err)
		return err
	}

	serials, err := recorder.ProfileIDs(ctx)
	if err != nil {
		fmt.Printf("[fail] sheets: %v\n", err)
		return err
	}
	fmt.Printf("[ok] sheets: %d profiles listed\n", len(serials))

	return nil
}
