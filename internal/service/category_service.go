package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"electro-shop/internal/domain"
	"electro-shop/internal/repository"
	"electro-shop/internal/upload"
)

// FileStore persists uploaded files and hands back their public location.
type FileStore interface {
	Save(subdir string, fh *multipart.FileHeader) (*upload.File, error)
	Remove(f *upload.File) error
}

type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, categoryNumber int64) (*domain.Category, error)
	Create(ctx context.Context, name string) (category *domain.Category, created bool, err error)
	Rename(ctx context.Context, categoryNumber int64, name string) (*domain.Category, error)
	Delete(ctx context.Context, categoryNumber int64) error
	UploadImage(ctx context.Context, categoryNumber int64, fh *multipart.FileHeader) (*domain.CategoryImage, error)
}

type categoryService struct {
	repo  repository.CategoryRepository
	files FileStore
}

func NewCategoryService(repo repository.CategoryRepository, files FileStore) CategoryService {
	return &categoryService{repo: repo, files: files}
}

// NormalizeName trims a display name and collapses inner whitespace runs.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) Get(ctx context.Context, categoryNumber int64) (*domain.Category, error) {
	return s.repo.FindByID(ctx, categoryNumber)
}

// Create is idempotent on the normalized name: an existing category is
// returned with created=false.
func (s *categoryService) Create(ctx context.Context, name string) (*domain.Category, bool, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, false, invalidf("categoryName is required")
	}
	return s.repo.Create(ctx, name)
}

func (s *categoryService) Rename(ctx context.Context, categoryNumber int64, name string) (*domain.Category, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, invalidf("categoryName is required")
	}
	return s.repo.Update(ctx, categoryNumber, name)
}

func (s *categoryService) Delete(ctx context.Context, categoryNumber int64) error {
	return s.repo.Delete(ctx, categoryNumber)
}

// UploadImage stores the file under the category's own directory and makes
// it the category's current image.
func (s *categoryService) UploadImage(ctx context.Context, categoryNumber int64, fh *multipart.FileHeader) (*domain.CategoryImage, error) {
	category, err := s.repo.FindByID(ctx, categoryNumber)
	if err != nil {
		return nil, err
	}

	file, err := s.files.Save("categories/"+category.CategoryName, fh)
	if err != nil {
		return nil, err
	}

	image, err := s.repo.AddImage(ctx, categoryNumber, file.FileName, file.URL)
	if err != nil {
		_ = s.files.Remove(file)
		return nil, fmt.Errorf("failed to record category image: %w", err)
	}

	return image, nil
}
