package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonysxn/brobar.delivery/internal/optimizer"
	"github.com/tonysxn/brobar.delivery/internal/progress"
	"github.com/tonysxn/brobar.delivery/internal/ui"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Convert downloaded images to WebP and write the update statements",
	Args:  cobra.NoArgs,
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().String("src", "", "Raw image directory (default uploads_backup)")
	optimizeCmd.Flags().String("dst", "", "Optimized image directory (default uploads)")
	optimizeCmd.Flags().String("updates", "", "Update statement file (default scripts/update_images.sql)")
	optimizeCmd.Flags().Int("max-size", 0, "Longest edge in pixels (default 800)")
	optimizeCmd.Flags().Int("quality", 0, "WebP quality 1..100 (default 80)")
	optimizeCmd.Flags().Bool("dry-run", false, "Print the plan without encoding")
	optimizeCmd.Flags().String("format", "table", "Dry-run output format: json, table")
	optimizeCmd.Flags().Bool("progress", false, "Show a spinner on stderr")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if v, _ := flags.GetString("src"); v != "" {
		cfg.RawDir = v
	}
	if v, _ := flags.GetString("dst"); v != "" {
		cfg.OptimizedDir = v
	}
	if v, _ := flags.GetString("updates"); v != "" {
		cfg.UpdatesPath = v
	}
	if v, _ := flags.GetInt("max-size"); v != 0 {
		cfg.MaxDimension = v
	}
	if v, _ := flags.GetInt("quality"); v != 0 {
		cfg.Quality = v
	}
	dryRun, _ := flags.GetBool("dry-run")
	format, _ := flags.GetString("format")
	showProgress, _ := flags.GetBool("progress")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	codec := optimizer.NewFFmpegCodec(cfg.FFmpegPath)
	opt := optimizer.New(cfg, codec, log)

	plan, err := opt.Plan()
	if err != nil {
		return err
	}

	if dryRun {
		if format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		}
		printPlan(os.Stdout, plan)
		return nil
	}

	if !codec.IsAvailable() {
		return fmt.Errorf("ffmpeg not available at path: %s", cfg.FFmpegPath)
	}

	ctx := cmd.Context()
	stopSpinner := func() {}
	if showProgress {
		spin := ui.NewSpinner()
		spin.Start("Optimizing images...")
		stopSpinner = spin.Stop
		ctx = progress.With(ctx, spin.Update)
	}

	assets, err := opt.Run(ctx, plan)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}
	if err := optimizer.WriteUpdates(cfg.UpdatesPath, assets); err != nil {
		return fmt.Errorf("write updates: %w", err)
	}

	printOptimizeSummary(os.Stdout, plan, len(assets), cfg.UpdatesPath)
	return nil
}
