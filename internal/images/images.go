// Package images downloads product pictures into the raw-assets directory
// under their product slug.
package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tonysxn/brobar.delivery/internal/fetch"
	"github.com/tonysxn/brobar.delivery/internal/httputil"
)

// ErrNoImage is returned when a card has no image source.
var ErrNoImage = errors.New("no image source")

// Fetcher stores images as "{baseName}.{ext}" in dir.
type Fetcher struct {
	client *http.Client
	dir    string
	logger *slog.Logger
}

func NewFetcher(client *http.Client, dir string, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		dir:    dir,
		logger: logger.With("component", "image_fetcher"),
	}
}

// Dir is the directory images are written to.
func (f *Fetcher) Dir() string { return f.dir }

// FetchAndStore downloads url with a single GET and writes it to the raw
// directory, replacing any previous file of the same name. It returns the
// stored filename (not the full path).
func (f *Fetcher) FetchAndStore(ctx context.Context, url, baseName string) (string, error) {
	if url == "" {
		return "", ErrNoImage
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httputil.Apply(req, httputil.ImageHeaders())

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &fetch.StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := httputil.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	if mt := mimetype.Detect(data); !strings.HasPrefix(mt.String(), "image/") {
		f.logger.WarnContext(ctx, "downloaded payload is not an image",
			"url", url,
			"detected", mt.String(),
		)
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", f.dir, err)
	}

	name := baseName + "." + Extension(url)
	if err := os.WriteFile(filepath.Join(f.dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// Extension picks the stored extension from the URL suffix; anything that
// is not explicitly png or jpeg is stored as jpg.
func Extension(url string) string {
	switch {
	case strings.HasSuffix(url, ".png"):
		return "png"
	case strings.HasSuffix(url, ".jpeg"):
		return "jpeg"
	default:
		return "jpg"
	}
}
