// Package fetch retrieves category pages, either as served or as rendered
// by a headless browser.
package fetch

import (
	"context"
	"fmt"
	"net/http"
)

// Response is a fetched page.
type Response struct {
	URL         string
	StatusCode  int
	Body        []byte
	ContentType string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher issues a single GET. A non-2xx status is not an error at this
// level; callers inspect Response.StatusCode.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// StatusError reports a page or asset that answered with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}
