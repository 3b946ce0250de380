package transport

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"electro-shop/internal/domain"
	"electro-shop/internal/repository"

	"github.com/shopspring/decimal"
)

// memOrderRepository keeps orders in memory with the same lifecycle rules
// as the SQL store, including one open cart per user.
type memOrderRepository struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
}

func newMemOrderRepository() *memOrderRepository {
	return &memOrderRepository{orders: make(map[int64]*domain.Order)}
}

func (m *memOrderRepository) insert(userNumber int64, status domain.OrderStatus, total decimal.Decimal, products string) (*domain.Order, error) {
	if status == domain.OrderStatusOpen {
		for _, o := range m.orders {
			if o.UserNumber == userNumber && o.OrderStatus == domain.OrderStatusOpen {
				return nil, repository.ErrOpenOrderExists
			}
		}
	}
	m.nextID++
	o := &domain.Order{
		OrderNumber:     m.nextID,
		UserNumber:      userNumber,
		OrderStatus:     status,
		TotalPrice:      total,
		ArrayOfProducts: products,
		CreatedAt:       time.Now(),
	}
	m.orders[o.OrderNumber] = o
	copied := *o
	return &copied, nil
}

func (m *memOrderRepository) sorted(match func(*domain.Order) bool) []*domain.Order {
	out := []*domain.Order{}
	for _, o := range m.orders {
		if match(o) {
			copied := *o
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber > out[j].OrderNumber })
	return out
}

func (m *memOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(*domain.Order) bool { return true }), nil
}

func (m *memOrderRepository) FindByID(ctx context.Context, orderNumber int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderNumber]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *memOrderRepository) Create(ctx context.Context, in *domain.OrderInput) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := domain.OrderStatusOpen
	if in.OrderStatus != nil {
		status = *in.OrderStatus
	}
	total := decimal.Zero
	if in.TotalPrice != nil {
		total = *in.TotalPrice
	}
	products := "[]"
	if in.ArrayOfProducts != nil {
		products = *in.ArrayOfProducts
	}
	return m.insert(*in.UserNumber, status, total, products)
}

func (m *memOrderRepository) Update(ctx context.Context, orderNumber int64, in *domain.OrderInput) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderNumber]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if in.OrderStatus != nil {
		o.OrderStatus = *in.OrderStatus
	}
	if in.UserNumber != nil {
		o.UserNumber = *in.UserNumber
	}
	if in.PaymentID != nil {
		o.PaymentID = in.PaymentID
	}
	if in.TotalPrice != nil {
		o.TotalPrice = *in.TotalPrice
	}
	if in.ArrayOfProducts != nil {
		o.ArrayOfProducts = *in.ArrayOfProducts
	}
	copied := *o
	return &copied, nil
}

func (m *memOrderRepository) Delete(ctx context.Context, orderNumber int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[orderNumber]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, orderNumber)
	return nil
}

func (m *memOrderRepository) FindOpenByUser(ctx context.Context, userNumber int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	open := m.sorted(func(o *domain.Order) bool {
		return o.UserNumber == userNumber && o.OrderStatus == domain.OrderStatusOpen
	})
	if len(open) == 0 {
		return nil, nil
	}
	return open[0], nil
}

func (m *memOrderRepository) ListClosedByUser(ctx context.Context, userNumber int64) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(o *domain.Order) bool {
		return o.UserNumber == userNumber && o.OrderStatus == domain.OrderStatusClosed
	}), nil
}

func (m *memOrderRepository) Place(ctx context.Context, orderNumber int64) (*domain.PlacedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderNumber]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if err := domain.CanTransition(o.OrderStatus, domain.OrderStatusOrdered); err != nil {
		return nil, fmt.Errorf("%w: only open orders can be placed", err)
	}

	o.OrderStatus = domain.OrderStatusOrdered
	newOpen, err := m.insert(o.UserNumber, domain.OrderStatusOpen, decimal.Zero, "[]")
	if err != nil {
		o.OrderStatus = domain.OrderStatusOpen
		return nil, err
	}
	ordered := *o
	return &domain.PlacedOrder{Ordered: &ordered, NewOpen: newOpen}, nil
}

func (m *memOrderRepository) Transition(ctx context.Context, orderNumber int64, from, to domain.OrderStatus) (*domain.Order, error) {
	if err := domain.CanTransition(from, to); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderNumber]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if o.OrderStatus != from {
		return nil, fmt.Errorf("%w: order is %s, expected %s", domain.ErrInvalidTransition, o.OrderStatus, from)
	}
	o.OrderStatus = to
	copied := *o
	return &copied, nil
}

// memCategoryRepository matches names ignoring case; callers normalize
// whitespace first.
type memCategoryRepository struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]*domain.Category
}

func newMemCategoryRepository() *memCategoryRepository {
	return &memCategoryRepository{categories: make(map[int64]*domain.Category)}
}

func (m *memCategoryRepository) byName(name string) *domain.Category {
	for _, c := range m.categories {
		if strings.EqualFold(c.CategoryName, name) {
			return c
		}
	}
	return nil
}

func (m *memCategoryRepository) Create(ctx context.Context, name string) (*domain.Category, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing := m.byName(name); existing != nil {
		copied := *existing
		return &copied, false, nil
	}
	m.nextID++
	c := &domain.Category{CategoryNumber: m.nextID, CategoryName: name}
	m.categories[c.CategoryNumber] = c
	copied := *c
	return &copied, true, nil
}

func (m *memCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Category{}
	for _, c := range m.categories {
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryNumber < out[j].CategoryNumber })
	return out, nil
}

func (m *memCategoryRepository) FindByID(ctx context.Context, categoryNumber int64) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[categoryNumber]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memCategoryRepository) Update(ctx context.Context, categoryNumber int64, name string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[categoryNumber]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	if other := m.byName(name); other != nil && other.CategoryNumber != categoryNumber {
		return nil, repository.ErrCategoryAlreadyExists
	}
	c.CategoryName = name
	copied := *c
	return &copied, nil
}

func (m *memCategoryRepository) Delete(ctx context.Context, categoryNumber int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[categoryNumber]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, categoryNumber)
	return nil
}

func (m *memCategoryRepository) AddImage(ctx context.Context, categoryNumber int64, fileName, url string) (*domain.CategoryImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[categoryNumber]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	c.Image = &url
	return &domain.CategoryImage{ImageID: 1, CategoryNumber: categoryNumber, FileName: fileName, URL: url, CreatedAt: time.Now()}, nil
}
