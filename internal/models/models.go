package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
	Icon string    `json:"icon,omitempty"`
	Sort int       `json:"sort"`
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	ExternalID  string          `json:"external_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Weight      decimal.Decimal `json:"weight"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Sort        int             `json:"sort"`
	Hidden      bool            `json:"hidden"`
	Alcohol     bool            `json:"alcohol"`
	Sold        bool            `json:"sold"`
	Image       string          `json:"image"`
}

// Catalog is everything one scrape run produced, in emission order.
type Catalog struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// ImageAsset links a raw image to the optimized file derived from it.
type ImageAsset struct {
	BaseName          string `json:"base_name"`
	SourceFilename    string `json:"source_filename"`
	OptimizedFilename string `json:"optimized_filename"`
}
