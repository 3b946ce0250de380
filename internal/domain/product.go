package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching what clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog
type Product struct {
	ProductNumber  int64           `json:"productNumber"`
	ProductName    string          `json:"productName"`
	Barcode        *string         `json:"barcode"`
	Brand          *string         `json:"brand"`
	CategoryNumber *int64          `json:"categoryNumber"`
	BuyingPrice    decimal.Decimal `json:"buyingPrice"`
	SellingPrice   decimal.Decimal `json:"sellingPrice"`
	InStock        int             `json:"inStock"`
}

// ProductSummary is a product joined with its category name and first image.
type ProductSummary struct {
	Product
	CategoryName *string `json:"categoryName"`
	Image        *string `json:"image"`
}

// Category represents a product category. Image is the url of the most
// recently uploaded category image, if any.
type Category struct {
	CategoryNumber int64   `json:"categoryNumber"`
	CategoryName   string  `json:"categoryName"`
	Image          *string `json:"image"`
}

// ProductImage is one ordered picture of a product.
type ProductImage struct {
	ImageID       int64  `json:"imageID"`
	ProductNumber int64  `json:"productNumber"`
	FileName      string `json:"fileName"`
	URL           string `json:"url"`
	SortOrder     int    `json:"sortOrder"`
}

// ProductDescription is one ordered title/text block of a product page.
type ProductDescription struct {
	DescriptionID int64   `json:"descriptionID"`
	ProductNumber int64   `json:"productNumber"`
	Title         *string `json:"title"`
	Text          *string `json:"text"`
	SortOrder     int     `json:"sortOrder"`
}

// DescriptionInput is a title/text pair submitted in bulk.
type DescriptionInput struct {
	Title string `json:"title" validate:"max=50"`
	Text  string `json:"text" validate:"max=300"`
}

// CategoryImage is an uploaded picture of a category; the newest one is the
// category's display image.
type CategoryImage struct {
	ImageID        int64     `json:"imageID"`
	CategoryNumber int64     `json:"categoryNumber"`
	FileName       string    `json:"fileName"`
	URL            string    `json:"url"`
	CreatedAt      time.Time `json:"createdAt"`
}
