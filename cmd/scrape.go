package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonysxn/brobar.delivery/internal/progress"
	"github.com/tonysxn/brobar.delivery/internal/snapshot"
	"github.com/tonysxn/brobar.delivery/internal/ui"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the menu and write the database snapshot",
	Args:  cobra.NoArgs,
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().String("out", "", "Snapshot file (default backup_product_db.sql)")
	scrapeCmd.Flags().String("raw-dir", "", "Directory for downloaded images (default uploads_backup)")
	scrapeCmd.Flags().String("render", "", "Page rendering: static, headless")
	scrapeCmd.Flags().Bool("progress", false, "Show a spinner on stderr")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.SnapshotPath = v
	}
	if v, _ := cmd.Flags().GetString("raw-dir"); v != "" {
		cfg.RawDir = v
	}
	if v, _ := cmd.Flags().GetString("render"); v != "" {
		cfg.Render = v
	}
	showProgress, _ := cmd.Flags().GetBool("progress")

	s, closeFetcher, err := buildScraper()
	if err != nil {
		return err
	}
	defer closeFetcher()

	ctx := cmd.Context()
	stopSpinner := func() {}
	if showProgress {
		spin := ui.NewSpinner()
		spin.Start("Scraping menu...")
		stopSpinner = spin.Stop
		ctx = progress.With(ctx, spin.Update)
	}

	catalog, report, err := s.Run(ctx)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	opts := snapshot.Options{Owner: cfg.DBOwner, SchemaVersion: cfg.SchemaVersion}
	if err := snapshot.WriteFile(cfg.SnapshotPath, catalog, opts); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	log.Info("snapshot written", "path", cfg.SnapshotPath, "categories", len(catalog.Categories), "products", len(catalog.Products))

	printScrapeSummary(os.Stdout, report, cfg.SnapshotPath)
	return nil
}
