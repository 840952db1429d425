package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/tonysxn/brobar.delivery/config"
	"github.com/tonysxn/brobar.delivery/internal/fetch"
	"github.com/tonysxn/brobar.delivery/internal/httputil"
	"github.com/tonysxn/brobar.delivery/internal/images"
	"github.com/tonysxn/brobar.delivery/internal/logger"
	"github.com/tonysxn/brobar.delivery/internal/polite"
	"github.com/tonysxn/brobar.delivery/internal/scraper"
)

var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:               "brobar-menu",
	Short:             "Brobar menu exporter",
	Long:              "Scrapes the brobar.delivery menu into a re-importable Postgres snapshot and prepares the product images for the web.",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")
	rootCmd.PersistentFlags().String("log-output", "", "Log output: stderr, file, both")
	rootCmd.PersistentFlags().String("delay-profile", "", "Delay profile: off, normal, cautious")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().String("proxy", "", "HTTP proxy URL")
	rootCmd.PersistentFlags().Int("workers", 0, "Concurrent downloads or encodes")
}

// initConfig layers defaults, config file, environment and flags, then
// builds the logger.
func initConfig(cmd *cobra.Command, args []string) error {
	cfg = config.DefaultConfig()

	flags := cmd.Flags()
	if path, _ := flags.GetString("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return err
		}
	}
	cfg.LoadFromEnv()

	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if v, _ := flags.GetString("log-output"); v != "" {
		cfg.LogOutput = v
	}
	if v, _ := flags.GetString("delay-profile"); v != "" {
		cfg.DelayProfile = v
	}
	if v, _ := flags.GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := flags.GetString("proxy"); v != "" {
		cfg.ProxyURL = v
	}
	if v, _ := flags.GetInt("workers"); v > 0 {
		cfg.Workers = v
	}

	lc := logger.DefaultConfig()
	lc.Level = cfg.LogLevel
	lc.Format = cfg.LogFormat
	lc.Output = cfg.LogOutput
	lc.FilePath = cfg.LogFile
	l, err := logger.New(lc)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = l
	return nil
}

// buildHTTPClient creates the polite HTTP client from config. The transport
// is returned as well so headless rendering can share its checks.
func buildHTTPClient() (*http.Client, *polite.Transport, error) {
	var proxy func(*http.Request) (*url.URL, error)
	if cfg.ProxyURL != "" {
		u, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse proxy url: %w", err)
		}
		proxy = http.ProxyURL(u)
	}
	base := httputil.NewBaseTransport(proxy)

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	transport := &polite.Transport{
		Base:    base,
		Agents:  polite.NewAgentPool(),
		Limiter: rate.NewLimiter(limit, burst),
		Delay:   polite.NewDelay(polite.DelayProfile(cfg.DelayProfile)),
	}
	if cfg.RespectRobots {
		transport.Robots = polite.NewRobotsChecker(httputil.NewHTTPClient(base, cfg.HTTPTimeout))
	}

	return httputil.NewHTTPClient(transport, cfg.HTTPTimeout), transport, nil
}

// buildFetcher picks the page fetcher for the configured render mode. The
// returned func releases the headless browser, if one was started.
func buildFetcher(client *http.Client, transport *polite.Transport) (fetch.Fetcher, func()) {
	if cfg.Render == "headless" {
		h := fetch.NewHeadlessFetcher(cfg.HTTPTimeout, transport)
		return h, func() {
			if err := h.Close(); err != nil {
				log.Warn("close browser", "error", err)
			}
		}
	}
	return fetch.NewStaticFetcher(client), func() {}
}

// buildScraper wires fetcher, image store and scraper from cfg.
func buildScraper() (*scraper.Scraper, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	client, transport, err := buildHTTPClient()
	if err != nil {
		return nil, nil, err
	}
	fetcher, closeFetcher := buildFetcher(client, transport)
	store := images.NewFetcher(client, cfg.RawDir, log)

	s, err := scraper.New(cfg, fetcher, store, log)
	if err != nil {
		closeFetcher()
		return nil, nil, err
	}
	return s, closeFetcher, nil
}
