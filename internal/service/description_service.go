package service

import (
	"context"

	"electro-shop/internal/domain"
	"electro-shop/internal/repository"
)

type DescriptionService interface {
	List(ctx context.Context) ([]*domain.ProductDescription, error)
	Get(ctx context.Context, descriptionID int64) (*domain.ProductDescription, error)
	CreateBatch(ctx context.Context, productNumber int64, items []domain.DescriptionInput) ([]*domain.ProductDescription, error)
	Update(ctx context.Context, descriptionID int64, patch *domain.DescriptionPatch) (*domain.ProductDescription, error)
	Delete(ctx context.Context, descriptionID int64) error
	ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductDescription, error)
	DeleteByProduct(ctx context.Context, productNumber int64) (int64, error)
}

type descriptionService struct {
	repo repository.DescriptionRepository
}

func NewDescriptionService(repo repository.DescriptionRepository) DescriptionService {
	return &descriptionService{repo: repo}
}

func (s *descriptionService) List(ctx context.Context) ([]*domain.ProductDescription, error) {
	return s.repo.List(ctx)
}

func (s *descriptionService) Get(ctx context.Context, descriptionID int64) (*domain.ProductDescription, error) {
	return s.repo.FindByID(ctx, descriptionID)
}

// CreateBatch inserts every item for the product, or none of them.
func (s *descriptionService) CreateBatch(ctx context.Context, productNumber int64, items []domain.DescriptionInput) ([]*domain.ProductDescription, error) {
	if productNumber <= 0 {
		return nil, invalidf("productNumber is required")
	}
	if len(items) == 0 {
		return nil, invalidf("descriptions must not be empty")
	}
	return s.repo.CreateBatch(ctx, productNumber, items)
}

func (s *descriptionService) Update(ctx context.Context, descriptionID int64, patch *domain.DescriptionPatch) (*domain.ProductDescription, error) {
	if patch.Title == nil && patch.Text == nil && patch.SortOrder == nil {
		return nil, invalidf("nothing to update")
	}
	return s.repo.Update(ctx, descriptionID, patch)
}

func (s *descriptionService) Delete(ctx context.Context, descriptionID int64) error {
	return s.repo.Delete(ctx, descriptionID)
}

func (s *descriptionService) ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductDescription, error) {
	return s.repo.ListByProduct(ctx, productNumber)
}

func (s *descriptionService) DeleteByProduct(ctx context.Context, productNumber int64) (int64, error) {
	return s.repo.DeleteByProduct(ctx, productNumber)
}
