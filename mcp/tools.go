package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tonysxn/brobar.delivery/config"
	"github.com/tonysxn/brobar.delivery/internal/identity"
	"github.com/tonysxn/brobar.delivery/internal/models"
	"github.com/tonysxn/brobar.delivery/internal/optimizer"
	"github.com/tonysxn/brobar.delivery/internal/scraper"
)

// CategoryScraper scrapes one category page.
type CategoryScraper interface {
	ScrapeCategory(ctx context.Context, cat models.Category) ([]models.Product, *scraper.Report, error)
}

type tools struct {
	cfg     *config.Config
	scraper CategoryScraper
}

type categoryResult struct {
	Category models.Category  `json:"category"`
	Products []models.Product `json:"products"`
	Report   *scraper.Report  `json:"report"`
}

func registerTools(s *server.MCPServer, t *tools) {
	// scrape_category
	scrapeTool := mcp.NewTool("scrape_category",
		mcp.WithDescription("Scrape one menu category and return its products. Images are downloaded to the raw image directory."),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("Category slug as used in /category/{slug}"),
		),
		mcp.WithString("name",
			mcp.Description("Display name (default: configured name or the slug)"),
		),
	)
	s.AddTool(scrapeTool, t.handleScrapeCategory)

	// resolve_base_name
	baseNameTool := mcp.NewTool("resolve_base_name",
		mcp.WithDescription("Resolve an image filename to the product slug it belongs to"),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Image filename, e.g. batat-fri.697b8d8a.79514815.jpg"),
		),
	)
	s.AddTool(baseNameTool, t.handleResolveBaseName)

	// plan_optimization
	planTool := mcp.NewTool("plan_optimization",
		mcp.WithDescription("List which raw images would be converted and which are skipped as duplicates"),
	)
	s.AddTool(planTool, t.handlePlanOptimization)
}

func (t *tools) handleScrapeCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug := request.GetString("slug", "")
	if slug == "" {
		return mcp.NewToolResultError("slug is required"), nil
	}

	name := request.GetString("name", "")
	var icon string
	for _, c := range t.cfg.Categories {
		if c.Slug == slug {
			if name == "" {
				name = c.Name
			}
			icon = c.Icon
			break
		}
	}
	if name == "" {
		name = slug
	}

	cat := models.Category{ID: uuid.New(), Name: name, Slug: slug, Icon: icon}
	products, report, err := t.scraper.ScrapeCategory(ctx, cat)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scrape error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(categoryResult{Category: cat, Products: products, Report: report}, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (t *tools) handleResolveBaseName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename := request.GetString("filename", "")
	if filename == "" {
		return mcp.NewToolResultError("filename is required"), nil
	}
	return mcp.NewToolResultText(identity.DeriveBaseName(filename)), nil
}

func (t *tools) handlePlanOptimization(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := optimizer.Scan(t.cfg.RawDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan error: %v", err)), nil
	}
	data, _ := json.MarshalIndent(plan, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}
