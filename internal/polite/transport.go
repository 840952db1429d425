// Package polite provides an http.RoundTripper that behaves like a
// considerate crawler: rotating user agent, robots.txt, rate limit, and
// optional human-like pauses.
package polite

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

// Transport applies, in order: user agent → robots.txt → rate limiter →
// delay → Base.
type Transport struct {
	Base    http.RoundTripper
	Agents  *AgentPool
	Robots  *RobotsChecker
	Limiter *rate.Limiter
	Delay   *Delay
}

// ErrDisallowed is returned for URLs excluded by robots.txt.
type ErrDisallowed struct {
	URL string
}

func (e *ErrDisallowed) Error() string {
	return fmt.Sprintf("blocked by robots.txt: %s", e.URL)
}

// Admit runs the checks of a request to u without sending it: it picks the
// user agent, consults robots.txt and waits on the limiter and delay. The
// headless fetcher calls it before every navigation.
func (t *Transport) Admit(ctx context.Context, u *url.URL, userAgent string) (string, error) {
	if t.Agents != nil {
		userAgent = t.Agents.Next()
	}

	if t.Robots != nil && !t.Robots.Allowed(userAgent, u) {
		return "", &ErrDisallowed{URL: u.String()}
	}

	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	if t.Delay != nil {
		if err := t.Delay.Wait(ctx); err != nil {
			return "", fmt.Errorf("delay: %w", err)
		}
	}
	return userAgent, nil
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	ua, err := t.Admit(req.Context(), req.URL, req.Header.Get("User-Agent"))
	if err != nil {
		return nil, err
	}
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
