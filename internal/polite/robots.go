package polite

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker fetches robots.txt once per host and answers path checks.
// A host whose robots.txt cannot be fetched or parsed allows everything.
type RobotsChecker struct {
	client *http.Client
	mu     sync.Mutex
	rules  map[string]*robotstxt.RobotsData
}

// NewRobotsChecker uses client for robots.txt requests. The client must not
// itself route through a RobotsChecker.
func NewRobotsChecker(client *http.Client) *RobotsChecker {
	return &RobotsChecker{
		client: client,
		rules:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether userAgent may fetch u.
func (r *RobotsChecker) Allowed(userAgent string, u *url.URL) bool {
	data := r.load(u.Scheme + "://" + u.Host)
	if data == nil {
		return true
	}
	return data.TestAgent(u.Path, userAgent)
}

func (r *RobotsChecker) load(origin string) *robotstxt.RobotsData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.rules[origin]; ok {
		return data
	}
	data, err := r.fetch(origin)
	if err != nil {
		data = nil
	}
	r.rules[origin] = data
	return data
}

func (r *RobotsChecker) fetch(origin string) (*robotstxt.RobotsData, error) {
	resp, err := r.client.Get(origin + "/robots.txt")
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	// robotstxt reads a 5xx as disallow-all; a flaky host must not block
	// the whole run.
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("fetch robots.txt: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}
	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}
