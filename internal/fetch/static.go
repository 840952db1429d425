package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tonysxn/brobar.delivery/internal/httputil"
)

// StaticFetcher returns the HTML exactly as the server sends it.
type StaticFetcher struct {
	client *http.Client
}

func NewStaticFetcher(client *http.Client) *StaticFetcher {
	return &StaticFetcher{client: client}
}

func (s *StaticFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httputil.Apply(req, httputil.PageHeaders())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	return &Response{
		URL:         url,
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
