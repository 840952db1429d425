package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/tonysxn/brobar.delivery/config"
)

// NewServer builds the MCP server with all tools registered.
func NewServer(cfg *config.Config, scraper CategoryScraper) *server.MCPServer {
	s := server.NewMCPServer(
		"brobar-menu",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, &tools{cfg: cfg, scraper: scraper})

	return s
}

// Serve starts the MCP stdio server.
func Serve(cfg *config.Config, scraper CategoryScraper) error {
	return server.ServeStdio(NewServer(cfg, scraper))
}
