package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"electro-shop/internal/domain"
	"electro-shop/internal/repository"
	"electro-shop/internal/upload"

	"github.com/shopspring/decimal"
)

// MaxProductImages caps one product image upload.
const MaxProductImages = 8

// ProductService defines the catalog operations on products and their
// images and descriptions.
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	ListFull(ctx context.Context) ([]*domain.ProductSummary, error)
	ListByBrand(ctx context.Context, brand string) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryNumber int64) ([]*domain.Product, error)
	Get(ctx context.Context, productNumber int64) (*domain.Product, error)
	Create(ctx context.Context, in *domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, productNumber int64, in *domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, productNumber int64) error

	UpdateBarcode(ctx context.Context, productNumber int64, barcode string) (*domain.Product, error)
	UpdatePrices(ctx context.Context, productNumber int64, buyingPrice, sellingPrice *decimal.Decimal) (*domain.Product, error)
	UpdateStock(ctx context.Context, productNumber int64, inStock *int) (*domain.Product, error)
	DecrementStock(ctx context.Context, productNumber int64) (*domain.Product, error)

	UploadImages(ctx context.Context, productNumber int64, files []*multipart.FileHeader, categoryName string) ([]*domain.ProductImage, error)
	ListImages(ctx context.Context, productNumber int64) ([]*domain.ProductImage, error)
	AddDescriptions(ctx context.Context, productNumber int64, items []domain.DescriptionInput) ([]*domain.ProductDescription, error)
	ListDescriptions(ctx context.Context, productNumber int64) ([]*domain.ProductDescription, error)
}

type productService struct {
	products     repository.ProductRepository
	images       repository.ImageRepository
	descriptions repository.DescriptionRepository
	files        FileStore
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	products repository.ProductRepository,
	images repository.ImageRepository,
	descriptions repository.DescriptionRepository,
	files FileStore,
) ProductService {
	return &productService{
		products:     products,
		images:       images,
		descriptions: descriptions,
		files:        files,
	}
}

func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

func (s *productService) ListFull(ctx context.Context) ([]*domain.ProductSummary, error) {
	return s.products.ListFull(ctx)
}

func (s *productService) ListByBrand(ctx context.Context, brand string) ([]*domain.Product, error) {
	return s.products.ListByBrand(ctx, brand)
}

func (s *productService) ListByCategory(ctx context.Context, categoryNumber int64) ([]*domain.Product, error) {
	return s.products.ListByCategory(ctx, categoryNumber)
}

func (s *productService) Get(ctx context.Context, productNumber int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, productNumber)
}

func (s *productService) Create(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	if in.ProductName == nil || strings.TrimSpace(*in.ProductName) == "" {
		return nil, invalidf("productName is required")
	}
	return s.products.Create(ctx, in)
}

// Update applies the present fields; descriptions are managed separately.
func (s *productService) Update(ctx context.Context, productNumber int64, in *domain.ProductInput) (*domain.Product, error) {
	if in.ProductName != nil && strings.TrimSpace(*in.ProductName) == "" {
		return nil, invalidf("productName cannot be empty")
	}
	patch := *in
	patch.Descriptions = nil
	return s.products.Update(ctx, productNumber, &patch)
}

func (s *productService) Delete(ctx context.Context, productNumber int64) error {
	return s.products.Delete(ctx, productNumber)
}

func (s *productService) UpdateBarcode(ctx context.Context, productNumber int64, barcode string) (*domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, invalidf("barcode is required")
	}
	return s.products.Update(ctx, productNumber, &domain.ProductInput{Barcode: &barcode})
}

// UpdatePrices sets both prices together.
func (s *productService) UpdatePrices(ctx context.Context, productNumber int64, buyingPrice, sellingPrice *decimal.Decimal) (*domain.Product, error) {
	if buyingPrice == nil || sellingPrice == nil {
		return nil, invalidf("buyingPrice and sellingPrice are required")
	}
	if buyingPrice.IsNegative() || sellingPrice.IsNegative() {
		return nil, invalidf("prices must be >= 0")
	}
	return s.products.Update(ctx, productNumber, &domain.ProductInput{
		BuyingPrice:  buyingPrice,
		SellingPrice: sellingPrice,
	})
}

func (s *productService) UpdateStock(ctx context.Context, productNumber int64, inStock *int) (*domain.Product, error) {
	if inStock == nil || *inStock < 0 {
		return nil, invalidf("inStock must be a non-negative integer")
	}
	return s.products.Update(ctx, productNumber, &domain.ProductInput{InStock: inStock})
}

func (s *productService) DecrementStock(ctx context.Context, productNumber int64) (*domain.Product, error) {
	return s.products.DecrementStock(ctx, productNumber)
}

// UploadImages stores the files in upload order and records them with
// matching sort orders. Files already written are removed when a later step
// fails.
func (s *productService) UploadImages(ctx context.Context, productNumber int64, files []*multipart.FileHeader, categoryName string) ([]*domain.ProductImage, error) {
	if len(files) == 0 {
		return nil, invalidf("no images uploaded")
	}
	if len(files) > MaxProductImages {
		return nil, invalidf("at most %d images per upload", MaxProductImages)
	}

	if _, err := s.products.FindByID(ctx, productNumber); err != nil {
		return nil, err
	}

	subdir := "products/" + strconv.FormatInt(productNumber, 10)
	if name := NormalizeName(categoryName); name != "" {
		subdir = "categories/" + name
	}

	images := make([]domain.ProductImage, 0, len(files))
	var saved []*upload.File
	cleanup := func() {
		for _, f := range saved {
			_ = s.files.Remove(f)
		}
	}

	for i, fh := range files {
		file, err := s.files.Save(subdir, fh)
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, file)
		images = append(images, domain.ProductImage{
			ProductNumber: productNumber,
			FileName:      file.FileName,
			URL:           file.URL,
			SortOrder:     i,
		})
	}

	created, err := s.images.CreateBatch(ctx, productNumber, images)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to record product images: %w", err)
	}

	return created, nil
}

func (s *productService) ListImages(ctx context.Context, productNumber int64) ([]*domain.ProductImage, error) {
	return s.images.ListByProduct(ctx, productNumber)
}

func (s *productService) AddDescriptions(ctx context.Context, productNumber int64, items []domain.DescriptionInput) ([]*domain.ProductDescription, error) {
	if len(items) == 0 {
		return nil, invalidf("descriptions must not be empty")
	}
	return s.descriptions.CreateBatch(ctx, productNumber, items)
}

func (s *productService) ListDescriptions(ctx context.Context, productNumber int64) ([]*domain.ProductDescription, error) {
	return s.descriptions.ListByProduct(ctx, productNumber)
}
