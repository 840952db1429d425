package images

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tonysxn/brobar.delivery/internal/fetch"
)

// smallest valid PNG header is enough for mimetype sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtension(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://brobar.delivery/products/a.6f1e.png", "png"},
		{"https://brobar.delivery/products/a.jpeg", "jpeg"},
		{"https://brobar.delivery/products/a.jpg", "jpg"},
		{"https://brobar.delivery/products/a.webp", "jpg"},
		{"https://brobar.delivery/products/a.PNG", "jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Extension(tt.url); got != tt.expected {
				t.Errorf("Extension(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestFetchAndStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products/big-bro.8a7b.79514815.png" {
			w.Write(pngBytes)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "uploads_backup")
	f := NewFetcher(srv.Client(), dir, discard())

	name, err := f.FetchAndStore(context.Background(), srv.URL+"/products/big-bro.8a7b.79514815.png", "big-bro")
	if err != nil {
		t.Fatalf("FetchAndStore: %v", err)
	}
	if name != "big-bro.png" {
		t.Errorf("filename = %q, want big-bro.png", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if string(data) != string(pngBytes) {
		t.Error("stored bytes differ from served bytes")
	}
}

func TestFetchAndStoreOverwrites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("second"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fries.jpg"), []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(srv.Client(), dir, discard())
	if _, err := f.FetchAndStore(context.Background(), srv.URL+"/fries.jpg", "fries"); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "fries.jpg"))
	if string(data) != "second" {
		t.Errorf("file not overwritten: %q", data)
	}
}

func TestFetchAndStoreFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(srv.Client(), dir, discard())

	_, err := f.FetchAndStore(context.Background(), srv.URL+"/missing.jpg", "missing")
	var statusErr *fetch.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got %v", err)
	}

	if _, err := f.FetchAndStore(context.Background(), "", "empty"); !errors.Is(err, ErrNoImage) {
		t.Errorf("expected ErrNoImage, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("failed downloads must not write files, found %d", len(entries))
	}
}
