package service

import (
	"context"
	"strings"

	"electro-shop/internal/domain"
	"electro-shop/internal/repository"
)

// PaymentService manages stored cards. The repository keeps at most one
// live default card per user.
type PaymentService interface {
	List(ctx context.Context) ([]*domain.PaymentMethod, error)
	Get(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error)
	ListByUser(ctx context.Context, userNumber int64) ([]*domain.PaymentMethod, error)
	DefaultByUser(ctx context.Context, userNumber int64) (*domain.PaymentMethod, error)
	Create(ctx context.Context, in *domain.PaymentInput) (*domain.PaymentMethod, error)
	Update(ctx context.Context, paymentID int64, in *domain.PaymentInput) (*domain.PaymentMethod, error)
	Delete(ctx context.Context, paymentID int64) error
	SetDefault(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error)
}

type paymentService struct {
	repo repository.PaymentRepository
}

func NewPaymentService(repo repository.PaymentRepository) PaymentService {
	return &paymentService{repo: repo}
}

func (s *paymentService) List(ctx context.Context) ([]*domain.PaymentMethod, error) {
	return s.repo.List(ctx)
}

func (s *paymentService) Get(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error) {
	return s.repo.FindByID(ctx, paymentID)
}

func (s *paymentService) ListByUser(ctx context.Context, userNumber int64) ([]*domain.PaymentMethod, error) {
	return s.repo.ListByUser(ctx, userNumber)
}

func (s *paymentService) DefaultByUser(ctx context.Context, userNumber int64) (*domain.PaymentMethod, error) {
	return s.repo.FindDefaultByUser(ctx, userNumber)
}

func (s *paymentService) Create(ctx context.Context, in *domain.PaymentInput) (*domain.PaymentMethod, error) {
	if in.UserNumber == nil {
		return nil, invalidf("userNumber is required")
	}
	if in.CardNumber == nil || strings.TrimSpace(*in.CardNumber) == "" {
		return nil, invalidf("cardNumber is required")
	}
	return s.repo.Create(ctx, in)
}

// Update cannot move a card to another user.
func (s *paymentService) Update(ctx context.Context, paymentID int64, in *domain.PaymentInput) (*domain.PaymentMethod, error) {
	patch := *in
	patch.UserNumber = nil
	return s.repo.Update(ctx, paymentID, &patch)
}

func (s *paymentService) Delete(ctx context.Context, paymentID int64) error {
	return s.repo.SoftDelete(ctx, paymentID)
}

func (s *paymentService) SetDefault(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error) {
	return s.repo.SetDefault(ctx, paymentID)
}
