package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/category/burgers":
			if r.Header.Get("Accept-Language") == "" {
				t.Error("page headers not applied")
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html><body>menu</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewStaticFetcher(srv.Client())

	resp, err := f.Fetch(context.Background(), srv.URL+"/category/burgers")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !resp.OK() || string(resp.Body) != "<html><body>menu</body></html>" {
		t.Errorf("unexpected response: %d %q", resp.StatusCode, resp.Body)
	}
	if resp.ContentType != "text/html; charset=utf-8" {
		t.Errorf("ContentType = %q", resp.ContentType)
	}

	resp, err = f.Fetch(context.Background(), srv.URL+"/category/missing")
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error: %v", err)
	}
	if resp.OK() || resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}
}

func TestStaticFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := NewStaticFetcher(http.DefaultClient).Fetch(context.Background(), url); err == nil {
		t.Error("expected error from closed server")
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{URL: "https://brobar.delivery/x.jpg", StatusCode: 404}
	if got := err.Error(); got != "GET https://brobar.delivery/x.jpg: 404 Not Found" {
		t.Errorf("Error() = %q", got)
	}
}
