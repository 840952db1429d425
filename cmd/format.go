package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/tonysxn/brobar.delivery/internal/optimizer"
	"github.com/tonysxn/brobar.delivery/internal/scraper"
)

// printScrapeSummary prints what a scrape produced and what it skipped.
func printScrapeSummary(w io.Writer, r *scraper.Report, path string) {
	fmt.Fprintf(w, "Snapshot: %s\n", path)
	fmt.Fprintf(w, "    Categories: %d", r.Categories)
	if len(r.CategoriesFailed) > 0 {
		fmt.Fprintf(w, "  (failed: %s)", strings.Join(r.CategoriesFailed, ", "))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    Products: %d  |  Skipped cards: %d\n", r.CardsParsed, r.CardsSkipped)
	fmt.Fprintf(w, "    Images: %d stored, %d missing\n", r.ImagesStored, r.ImagesMissing)
}

// printPlan prints the optimizer work list in a card layout.
func printPlan(w io.Writer, plan *optimizer.Plan) {
	for i, a := range plan.Representatives {
		fmt.Fprintf(w, " %d. %s\n", i+1, a.BaseName)
		fmt.Fprintf(w, "    %s -> %s\n", truncate(a.SourceFilename, 60), a.OptimizedFilename)
	}
	if len(plan.Skipped) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSkipped duplicates (%d):\n", len(plan.Skipped))
	for _, d := range plan.Skipped {
		fmt.Fprintf(w, "    %s  (kept %s)\n", truncate(d.File, 60), d.KeptFile)
	}
}

func printOptimizeSummary(w io.Writer, plan *optimizer.Plan, optimized int, path string) {
	failed := len(plan.Representatives) - optimized
	fmt.Fprintf(w, "Optimized %d of %d images", optimized, len(plan.Representatives))
	if failed > 0 {
		fmt.Fprintf(w, " (%d failed, see log)", failed)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    Duplicates skipped: %d\n", len(plan.Skipped))
	fmt.Fprintf(w, "    Updates: %s\n", path)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
