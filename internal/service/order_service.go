package service

import (
	"context"
	"fmt"

	"electro-shop/internal/domain"
	"electro-shop/internal/events"
	"electro-shop/internal/repository"

	"go.uber.org/zap"
)

// OrderService drives the cart lifecycle and announces completed
// transitions.
type OrderService interface {
	List(ctx context.Context) ([]*domain.Order, error)
	Get(ctx context.Context, orderNumber int64) (*domain.Order, error)
	Create(ctx context.Context, in *domain.OrderInput) (*domain.Order, error)
	Update(ctx context.Context, orderNumber int64, in *domain.OrderInput) (*domain.Order, error)
	Delete(ctx context.Context, orderNumber int64) error

	OpenByUser(ctx context.Context, userNumber int64) (*domain.Order, error)
	ClosedByUser(ctx context.Context, userNumber int64) ([]*domain.Order, error)

	Place(ctx context.Context, orderNumber int64) (*domain.PlacedOrder, error)
	Cancel(ctx context.Context, orderNumber int64) (*domain.Order, error)
	Deliver(ctx context.Context, orderNumber int64) (*domain.Order, error)
}

type orderService struct {
	repo      repository.OrderRepository
	publisher events.Publisher
	logger    *zap.Logger
}

func NewOrderService(repo repository.OrderRepository, publisher events.Publisher, logger *zap.Logger) OrderService {
	return &orderService{repo: repo, publisher: publisher, logger: logger}
}

func (s *orderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

func (s *orderService) Get(ctx context.Context, orderNumber int64) (*domain.Order, error) {
	return s.repo.FindByID(ctx, orderNumber)
}

func (s *orderService) Create(ctx context.Context, in *domain.OrderInput) (*domain.Order, error) {
	if in.UserNumber == nil {
		return nil, invalidf("userNumber is required")
	}
	return s.repo.Create(ctx, in)
}

// Update edits cart fields. The status only moves through Place, Cancel and
// Deliver; resending the current status is accepted.
func (s *orderService) Update(ctx context.Context, orderNumber int64, in *domain.OrderInput) (*domain.Order, error) {
	if in.OrderStatus != nil {
		current, err := s.repo.FindByID(ctx, orderNumber)
		if err != nil {
			return nil, err
		}
		if *in.OrderStatus != current.OrderStatus {
			return nil, fmt.Errorf("%w: order is %s, use the order, cancel or deliver actions",
				domain.ErrInvalidTransition, current.OrderStatus)
		}
	}
	return s.repo.Update(ctx, orderNumber, in)
}

func (s *orderService) Delete(ctx context.Context, orderNumber int64) error {
	return s.repo.Delete(ctx, orderNumber)
}

func (s *orderService) OpenByUser(ctx context.Context, userNumber int64) (*domain.Order, error) {
	return s.repo.FindOpenByUser(ctx, userNumber)
}

func (s *orderService) ClosedByUser(ctx context.Context, userNumber int64) ([]*domain.Order, error) {
	return s.repo.ListClosedByUser(ctx, userNumber)
}

// Place checks out the cart and opens a new one for the same user.
func (s *orderService) Place(ctx context.Context, orderNumber int64) (*domain.PlacedOrder, error) {
	placed, err := s.repo.Place(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderPlaced, placed.Ordered)
	return placed, nil
}

func (s *orderService) Cancel(ctx context.Context, orderNumber int64) (*domain.Order, error) {
	order, err := s.repo.Transition(ctx, orderNumber, domain.OrderStatusOrdered, domain.OrderStatusCanceled)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderCanceled, order)
	return order, nil
}

func (s *orderService) Deliver(ctx context.Context, orderNumber int64) (*domain.Order, error) {
	order, err := s.repo.Transition(ctx, orderNumber, domain.OrderStatusOrdered, domain.OrderStatusClosed)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderDelivered, order)
	return order, nil
}

// publish runs after the change is committed; a broker failure is logged
// and never undoes or fails the request.
func (s *orderService) publish(ctx context.Context, routingKey string, order *domain.Order) {
	if err := s.publisher.Publish(ctx, routingKey, order); err != nil {
		s.logger.Error("Failed to publish order event",
			zap.Error(err),
			zap.String("event", routingKey),
			zap.Int64("order_number", order.OrderNumber),
		)
	}
}
