package service

import (
	"context"
	"strings"

	"electro-shop/internal/domain"
	"electro-shop/internal/repository"
)

// ImageService manages product image rows directly, without uploads.
type ImageService interface {
	List(ctx context.Context) ([]*domain.ProductImage, error)
	Get(ctx context.Context, imageID int64) (*domain.ProductImage, error)
	Create(ctx context.Context, in *domain.ProductImageInput) (*domain.ProductImage, error)
	Update(ctx context.Context, imageID int64, in *domain.ProductImageInput) (*domain.ProductImage, error)
	Delete(ctx context.Context, imageID int64) error
	ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductImage, error)
	DeleteByProduct(ctx context.Context, productNumber int64) (int64, error)
}

type imageService struct {
	repo repository.ImageRepository
}

func NewImageService(repo repository.ImageRepository) ImageService {
	return &imageService{repo: repo}
}

func (s *imageService) List(ctx context.Context) ([]*domain.ProductImage, error) {
	return s.repo.List(ctx)
}

func (s *imageService) Get(ctx context.Context, imageID int64) (*domain.ProductImage, error) {
	return s.repo.FindByID(ctx, imageID)
}

func (s *imageService) Create(ctx context.Context, in *domain.ProductImageInput) (*domain.ProductImage, error) {
	switch {
	case in.ProductNumber == nil:
		return nil, invalidf("productNumber is required")
	case in.FileName == nil || strings.TrimSpace(*in.FileName) == "":
		return nil, invalidf("fileName is required")
	case in.URL == nil || strings.TrimSpace(*in.URL) == "":
		return nil, invalidf("url is required")
	}
	return s.repo.Create(ctx, in)
}

func (s *imageService) Update(ctx context.Context, imageID int64, in *domain.ProductImageInput) (*domain.ProductImage, error) {
	return s.repo.Update(ctx, imageID, in)
}

func (s *imageService) Delete(ctx context.Context, imageID int64) error {
	return s.repo.Delete(ctx, imageID)
}

func (s *imageService) ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductImage, error) {
	return s.repo.ListByProduct(ctx, productNumber)
}

func (s *imageService) DeleteByProduct(ctx context.Context, productNumber int64) (int64, error) {
	return s.repo.DeleteByProduct(ctx, productNumber)
}
