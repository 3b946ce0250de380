package service

import (
	"context"
	"mime/multipart"
	"sync"

	"electro-shop/internal/domain"
	"electro-shop/internal/upload"

	"github.com/stretchr/testify/mock"
)

func ret[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

type mockCategoryRepository struct{ mock.Mock }

func (m *mockCategoryRepository) Create(ctx context.Context, name string) (*domain.Category, bool, error) {
	args := m.Called(ctx, name)
	return ret[*domain.Category](args, 0), args.Bool(1), args.Error(2)
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	return ret[[]*domain.Category](args, 0), args.Error(1)
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, categoryNumber int64) (*domain.Category, error) {
	args := m.Called(ctx, categoryNumber)
	return ret[*domain.Category](args, 0), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, categoryNumber int64, name string) (*domain.Category, error) {
	args := m.Called(ctx, categoryNumber, name)
	return ret[*domain.Category](args, 0), args.Error(1)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, categoryNumber int64) error {
	return m.Called(ctx, categoryNumber).Error(0)
}

func (m *mockCategoryRepository) AddImage(ctx context.Context, categoryNumber int64, fileName, url string) (*domain.CategoryImage, error) {
	args := m.Called(ctx, categoryNumber, fileName, url)
	return ret[*domain.CategoryImage](args, 0), args.Error(1)
}

type mockProductRepository struct{ mock.Mock }

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	args := m.Called(ctx)
	return ret[[]*domain.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) ListFull(ctx context.Context) ([]*domain.ProductSummary, error) {
	args := m.Called(ctx)
	return ret[[]*domain.ProductSummary](args, 0), args.Error(1)
}

func (m *mockProductRepository) ListByBrand(ctx context.Context, brand string) ([]*domain.Product, error) {
	args := m.Called(ctx, brand)
	return ret[[]*domain.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, categoryNumber int64) ([]*domain.Product, error) {
	args := m.Called(ctx, categoryNumber)
	return ret[[]*domain.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) FindByID(ctx context.Context, productNumber int64) (*domain.Product, error) {
	args := m.Called(ctx, productNumber)
	return ret[*domain.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) Create(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, in)
	return ret[*domain.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, productNumber int64, in *domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, productNumber, in)
	return ret[*domain.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, productNumber int64) (*domain.Product, error) {
	args := m.Called(ctx, productNumber)
	return ret[*domain.Product](args, 0), args.Error(1)
}

func (m *mockProductRepository) Delete(ctx context.Context, productNumber int64) error {
	return m.Called(ctx, productNumber).Error(0)
}

type mockImageRepository struct{ mock.Mock }

func (m *mockImageRepository) List(ctx context.Context) ([]*domain.ProductImage, error) {
	args := m.Called(ctx)
	return ret[[]*domain.ProductImage](args, 0), args.Error(1)
}

func (m *mockImageRepository) FindByID(ctx context.Context, imageID int64) (*domain.ProductImage, error) {
	args := m.Called(ctx, imageID)
	return ret[*domain.ProductImage](args, 0), args.Error(1)
}

func (m *mockImageRepository) ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductImage, error) {
	args := m.Called(ctx, productNumber)
	return ret[[]*domain.ProductImage](args, 0), args.Error(1)
}

func (m *mockImageRepository) Create(ctx context.Context, in *domain.ProductImageInput) (*domain.ProductImage, error) {
	args := m.Called(ctx, in)
	return ret[*domain.ProductImage](args, 0), args.Error(1)
}

func (m *mockImageRepository) CreateBatch(ctx context.Context, productNumber int64, images []domain.ProductImage) ([]*domain.ProductImage, error) {
	args := m.Called(ctx, productNumber, images)
	return ret[[]*domain.ProductImage](args, 0), args.Error(1)
}

func (m *mockImageRepository) Update(ctx context.Context, imageID int64, in *domain.ProductImageInput) (*domain.ProductImage, error) {
	args := m.Called(ctx, imageID, in)
	return ret[*domain.ProductImage](args, 0), args.Error(1)
}

func (m *mockImageRepository) Delete(ctx context.Context, imageID int64) error {
	return m.Called(ctx, imageID).Error(0)
}

func (m *mockImageRepository) DeleteByProduct(ctx context.Context, productNumber int64) (int64, error) {
	args := m.Called(ctx, productNumber)
	return ret[int64](args, 0), args.Error(1)
}

type mockDescriptionRepository struct{ mock.Mock }

func (m *mockDescriptionRepository) List(ctx context.Context) ([]*domain.ProductDescription, error) {
	args := m.Called(ctx)
	return ret[[]*domain.ProductDescription](args, 0), args.Error(1)
}

func (m *mockDescriptionRepository) FindByID(ctx context.Context, descriptionID int64) (*domain.ProductDescription, error) {
	args := m.Called(ctx, descriptionID)
	return ret[*domain.ProductDescription](args, 0), args.Error(1)
}

func (m *mockDescriptionRepository) ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductDescription, error) {
	args := m.Called(ctx, productNumber)
	return ret[[]*domain.ProductDescription](args, 0), args.Error(1)
}

func (m *mockDescriptionRepository) CreateBatch(ctx context.Context, productNumber int64, items []domain.DescriptionInput) ([]*domain.ProductDescription, error) {
	args := m.Called(ctx, productNumber, items)
	return ret[[]*domain.ProductDescription](args, 0), args.Error(1)
}

func (m *mockDescriptionRepository) Update(ctx context.Context, descriptionID int64, patch *domain.DescriptionPatch) (*domain.ProductDescription, error) {
	args := m.Called(ctx, descriptionID, patch)
	return ret[*domain.ProductDescription](args, 0), args.Error(1)
}

func (m *mockDescriptionRepository) Delete(ctx context.Context, descriptionID int64) error {
	return m.Called(ctx, descriptionID).Error(0)
}

func (m *mockDescriptionRepository) DeleteByProduct(ctx context.Context, productNumber int64) (int64, error) {
	args := m.Called(ctx, productNumber)
	return ret[int64](args, 0), args.Error(1)
}

type mockOrderRepository struct{ mock.Mock }

func (m *mockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	args := m.Called(ctx)
	return ret[[]*domain.Order](args, 0), args.Error(1)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, orderNumber int64) (*domain.Order, error) {
	args := m.Called(ctx, orderNumber)
	return ret[*domain.Order](args, 0), args.Error(1)
}

func (m *mockOrderRepository) Create(ctx context.Context, in *domain.OrderInput) (*domain.Order, error) {
	args := m.Called(ctx, in)
	return ret[*domain.Order](args, 0), args.Error(1)
}

func (m *mockOrderRepository) Update(ctx context.Context, orderNumber int64, in *domain.OrderInput) (*domain.Order, error) {
	args := m.Called(ctx, orderNumber, in)
	return ret[*domain.Order](args, 0), args.Error(1)
}

func (m *mockOrderRepository) Delete(ctx context.Context, orderNumber int64) error {
	return m.Called(ctx, orderNumber).Error(0)
}

func (m *mockOrderRepository) FindOpenByUser(ctx context.Context, userNumber int64) (*domain.Order, error) {
	args := m.Called(ctx, userNumber)
	return ret[*domain.Order](args, 0), args.Error(1)
}

func (m *mockOrderRepository) ListClosedByUser(ctx context.Context, userNumber int64) ([]*domain.Order, error) {
	args := m.Called(ctx, userNumber)
	return ret[[]*domain.Order](args, 0), args.Error(1)
}

func (m *mockOrderRepository) Place(ctx context.Context, orderNumber int64) (*domain.PlacedOrder, error) {
	args := m.Called(ctx, orderNumber)
	return ret[*domain.PlacedOrder](args, 0), args.Error(1)
}

func (m *mockOrderRepository) Transition(ctx context.Context, orderNumber int64, from, to domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, orderNumber, from, to)
	return ret[*domain.Order](args, 0), args.Error(1)
}

type mockPaymentRepository struct{ mock.Mock }

func (m *mockPaymentRepository) List(ctx context.Context) ([]*domain.PaymentMethod, error) {
	args := m.Called(ctx)
	return ret[[]*domain.PaymentMethod](args, 0), args.Error(1)
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, paymentID)
	return ret[*domain.PaymentMethod](args, 0), args.Error(1)
}

func (m *mockPaymentRepository) ListByUser(ctx context.Context, userNumber int64) ([]*domain.PaymentMethod, error) {
	args := m.Called(ctx, userNumber)
	return ret[[]*domain.PaymentMethod](args, 0), args.Error(1)
}

func (m *mockPaymentRepository) FindDefaultByUser(ctx context.Context, userNumber int64) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, userNumber)
	return ret[*domain.PaymentMethod](args, 0), args.Error(1)
}

func (m *mockPaymentRepository) Create(ctx context.Context, in *domain.PaymentInput) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, in)
	return ret[*domain.PaymentMethod](args, 0), args.Error(1)
}

func (m *mockPaymentRepository) Update(ctx context.Context, paymentID int64, in *domain.PaymentInput) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, paymentID, in)
	return ret[*domain.PaymentMethod](args, 0), args.Error(1)
}

func (m *mockPaymentRepository) SoftDelete(ctx context.Context, paymentID int64) error {
	return m.Called(ctx, paymentID).Error(0)
}

func (m *mockPaymentRepository) SetDefault(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, paymentID)
	return ret[*domain.PaymentMethod](args, 0), args.Error(1)
}

// memoryFileStore records saved files instead of writing them.
type memoryFileStore struct {
	mu      sync.Mutex
	saved   []*upload.File
	removed []*upload.File
	subdirs []string
	failAt  int // 1-based index of the Save call that fails; 0 never fails
	saveErr error
}

func (s *memoryFileStore) Save(subdir string, fh *multipart.FileHeader) (*upload.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAt > 0 && len(s.subdirs)+1 == s.failAt {
		s.subdirs = append(s.subdirs, subdir)
		return nil, s.saveErr
	}
	s.subdirs = append(s.subdirs, subdir)

	name := fh.Filename
	f := &upload.File{FileName: name, URL: upload.PublicPrefix + "/" + upload.SanitizeSubdir(subdir) + "/" + name}
	s.saved = append(s.saved, f)
	return f, nil
}

func (s *memoryFileStore) Remove(f *upload.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, f)
	return nil
}
