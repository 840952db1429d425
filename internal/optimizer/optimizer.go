// Package optimizer converts downloaded product images into web-sized WebP
// files and produces the statements that point products at them.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tonysxn/brobar.delivery/config"
	"github.com/tonysxn/brobar.delivery/internal/identity"
	"github.com/tonysxn/brobar.delivery/internal/models"
	"github.com/tonysxn/brobar.delivery/internal/progress"
)

const targetExt = ".webp"

var sourceExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Duplicate is a raw file that was not encoded because another file with
// the same base name came first.
type Duplicate struct {
	File     string `json:"file"`
	BaseName string `json:"base_name"`
	KeptFile string `json:"kept_file"`
}

// Plan is the deterministic work list for one directory.
type Plan struct {
	Representatives []models.ImageAsset `json:"representatives"`
	Skipped         []Duplicate         `json:"skipped"`
	// Ignored lists files whose name yields no product key.
	Ignored []string `json:"ignored,omitempty"`
}

// Scan lists the images in dir in lexical order and keeps the first file
// of every base name.
func Scan(dir string) (*Plan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sourceExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	plan := &Plan{}
	kept := make(map[string]string)
	for _, name := range names {
		base := identity.DeriveBaseName(name)
		if base == "" {
			plan.Ignored = append(plan.Ignored, name)
			continue
		}
		if first, ok := kept[base]; ok {
			plan.Skipped = append(plan.Skipped, Duplicate{File: name, BaseName: base, KeptFile: first})
			continue
		}
		kept[base] = name
		plan.Representatives = append(plan.Representatives, models.ImageAsset{
			BaseName:          base,
			SourceFilename:    name,
			OptimizedFilename: base + targetExt,
		})
	}
	return plan, nil
}

type Optimizer struct {
	codec   Codec
	src     string
	dst     string
	maxDim  int
	quality int
	workers int
	logger  *slog.Logger
}

func New(cfg *config.Config, codec Codec, logger *slog.Logger) *Optimizer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Optimizer{
		codec:   codec,
		src:     cfg.RawDir,
		dst:     cfg.OptimizedDir,
		maxDim:  cfg.MaxDimension,
		quality: cfg.Quality,
		workers: workers,
		logger:  logger.With("component", "optimizer"),
	}
}

// Plan scans the configured source directory.
func (o *Optimizer) Plan() (*Plan, error) {
	return Scan(o.src)
}

// Run encodes every representative of plan and returns the assets that
// succeeded, in plan order. A failed encode is logged and left out; only
// context cancellation or an unusable output directory abort the batch.
// A failed representative is not retried with a later duplicate of the
// same base name; that base name simply gets no update statement.
func (o *Optimizer) Run(ctx context.Context, plan *Plan) ([]models.ImageAsset, error) {
	if err := os.MkdirAll(o.dst, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", o.dst, err)
	}

	for _, d := range plan.Skipped {
		o.logger.DebugContext(ctx, "duplicate skipped", "file", d.File, "kept", d.KeptFile)
	}
	for _, name := range plan.Ignored {
		o.logger.WarnContext(ctx, "image has no product key", "file", name)
	}

	ok := make([]bool, len(plan.Representatives))
	total := len(plan.Representatives)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, asset := range plan.Representatives {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src := filepath.Join(o.src, asset.SourceFilename)
			dst := filepath.Join(o.dst, asset.OptimizedFilename)
			progress.Report(gctx, "Optimizing %s (%d/%d)...", asset.SourceFilename, i+1, total)

			if err := o.codec.Encode(gctx, src, dst, o.maxDim, o.quality); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				o.logger.WarnContext(gctx, "image not optimized", "file", asset.SourceFilename, "error", err)
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var done []models.ImageAsset
	for i, asset := range plan.Representatives {
		if ok[i] {
			done = append(done, asset)
		}
	}
	o.logger.InfoContext(ctx, "images optimized",
		"optimized", len(done),
		"failed", total-len(done),
		"duplicates", len(plan.Skipped),
	)
	return done, nil
}

// UpdateStatement points the product keyed by the asset's base name at the
// optimized file. Keys are never quoted; slugs carry no quote characters.
func UpdateStatement(a models.ImageAsset) string {
	return fmt.Sprintf("UPDATE products SET image = '%s' WHERE slug = '%s';", a.OptimizedFilename, a.BaseName)
}

// UpdateStatements renders one statement per asset, newline separated.
func UpdateStatements(assets []models.ImageAsset) string {
	lines := make([]string, len(assets))
	for i, a := range assets {
		lines[i] = UpdateStatement(a)
	}
	return strings.Join(lines, "\n")
}

// WriteUpdates replaces path with the statements for assets.
func WriteUpdates(path string, assets []models.ImageAsset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, werr := tmp.WriteString(UpdateStatements(assets))
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
