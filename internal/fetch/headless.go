package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Admitter decides whether a page may be loaded now and with which user
// agent. polite.Transport implements it.
type Admitter interface {
	Admit(ctx context.Context, u *url.URL, userAgent string) (string, error)
}

// HeadlessFetcher renders pages in Chromium via rod, for menus whose cards
// are injected by JavaScript. The browser is launched on first use and
// reused until Close.
type HeadlessFetcher struct {
	timeout time.Duration
	admit   Admitter

	mu      sync.Mutex
	browser *rod.Browser
	l       *launcher.Launcher
}

// NewHeadlessFetcher renders with the given timeout. A non-nil admit runs
// before every navigation, so robots.txt and rate limits apply to rendered
// pages as they do to plain requests.
func NewHeadlessFetcher(timeout time.Duration, admit Admitter) *HeadlessFetcher {
	return &HeadlessFetcher{timeout: timeout, admit: admit}
}

func (h *HeadlessFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	var userAgent string
	if h.admit != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", rawURL, err)
		}
		if userAgent, err = h.admit.Admit(ctx, u, ""); err != nil {
			return nil, err
		}
	}

	browser, err := h.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1920,
		Height: 1080,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	timed := page.Timeout(h.timeout)
	if err := timed.Navigate(rawURL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	if err := timed.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load %s: %w", rawURL, err)
	}
	_ = timed.WaitDOMStable(time.Second, 0.1)

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("get page HTML: %w", err)
	}

	// rod does not surface the document status; a page that rendered is
	// treated as a success.
	return &Response{
		URL:         rawURL,
		StatusCode:  http.StatusOK,
		Body:        []byte(html),
		ContentType: "text/html; charset=utf-8",
	}, nil
}

// Close shuts the browser down if it was started.
func (h *HeadlessFetcher) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.browser == nil {
		return nil
	}
	err := h.browser.Close()
	h.l.Kill()
	h.browser, h.l = nil, nil
	return err
}

func (h *HeadlessFetcher) connect() (*rod.Browser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.browser != nil {
		return h.browser, nil
	}

	l := launcher.New().Headless(true).Logger(io.Discard)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	h.browser, h.l = browser, l
	return browser, nil
}
