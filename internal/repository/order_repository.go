package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"electro-shop/internal/database"
	"electro-shop/internal/domain"
	"electro-shop/internal/sqlbuild"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrOpenOrderExists = errors.New("user already has an open order")
)

const orderColumns = `order_number, user_number, order_status, total_price, payment_id, array_of_products, created_at`

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	List(ctx context.Context) ([]*domain.Order, error)
	FindByID(ctx context.Context, orderNumber int64) (*domain.Order, error)
	Create(ctx context.Context, in *domain.OrderInput) (*domain.Order, error)
	Update(ctx context.Context, orderNumber int64, in *domain.OrderInput) (*domain.Order, error)
	Delete(ctx context.Context, orderNumber int64) error
	FindOpenByUser(ctx context.Context, userNumber int64) (*domain.Order, error)
	ListClosedByUser(ctx context.Context, userNumber int64) ([]*domain.Order, error)
	Place(ctx context.Context, orderNumber int64) (*domain.PlacedOrder, error)
	Transition(ctx context.Context, orderNumber int64, from, to domain.OrderStatus) (*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.OrderNumber,
		&order.UserNumber,
		&order.OrderStatus,
		&order.TotalPrice,
		&order.PaymentID,
		&order.ArrayOfProducts,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// orderWriteError maps integrity errors of inserts and updates; the partial
// unique index on open orders surfaces as ErrOpenOrderExists.
func orderWriteError(action string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrOpenOrderExists, err)
	}
	return classify(action, err)
}

func (r *orderRepository) query(ctx context.Context, where string, args ...any) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ` + where + ` ORDER BY order_number DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.query(ctx, "")
}

func (r *orderRepository) ListClosedByUser(ctx context.Context, userNumber int64) ([]*domain.Order, error) {
	return r.query(ctx, `WHERE user_number = $1 AND order_status = $2`, userNumber, string(domain.OrderStatusClosed))
}

func (r *orderRepository) FindByID(ctx context.Context, orderNumber int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return order, nil
}

// FindOpenByUser returns the user's cart, or nil when there is none.
func (r *orderRepository) FindOpenByUser(ctx context.Context, userNumber int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE user_number = $1 AND order_status = $2
		ORDER BY order_number DESC LIMIT 1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, userNumber, string(domain.OrderStatusOpen)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open order: %w", err)
	}

	return order, nil
}

func (r *orderRepository) Create(ctx context.Context, in *domain.OrderInput) (*domain.Order, error) {
	query, args, err := sqlbuild.BuildInsert("orders", sqlbuild.Pick(in), orderColumns)
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, orderWriteError("create order", err)
	}

	return order, nil
}

func (r *orderRepository) Update(ctx context.Context, orderNumber int64, in *domain.OrderInput) (*domain.Order, error) {
	query, args, err := sqlbuild.BuildUpdate("orders", sqlbuild.Pick(in), "order_number", orderNumber, orderColumns)
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, orderWriteError("update order", err)
	}

	return order, nil
}

func (r *orderRepository) Delete(ctx context.Context, orderNumber int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE order_number = $1`, orderNumber)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Place checks out an open cart: the row is locked, moved to ordered, and a
// fresh empty cart is opened for the same user in the same transaction.
func (r *orderRepository) Place(ctx context.Context, orderNumber int64) (*domain.PlacedOrder, error) {
	placed := &domain.PlacedOrder{}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := scanOrder(tx.QueryRowContext(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE order_number = $1 FOR UPDATE`, orderNumber))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		if err := domain.CanTransition(current.OrderStatus, domain.OrderStatusOrdered); err != nil {
			return fmt.Errorf("%w: only open orders can be placed", err)
		}

		placed.Ordered, err = scanOrder(tx.QueryRowContext(ctx,
			`UPDATE orders SET order_status = $1 WHERE order_number = $2 RETURNING `+orderColumns,
			string(domain.OrderStatusOrdered), orderNumber))
		if err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}

		placed.NewOpen, err = scanOrder(tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_number, order_status, total_price, payment_id, array_of_products)
			 VALUES ($1, $2, 0, NULL, '[]')
			 RETURNING `+orderColumns,
			current.UserNumber, string(domain.OrderStatusOpen)))
		if err != nil {
			return orderWriteError("open new cart", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return placed, nil
}

// Transition moves an order from one status to another with a single
// conditional update. When nothing matches, the order is either missing
// (ErrOrderNotFound) or in another status (domain.ErrInvalidTransition).
func (r *orderRepository) Transition(ctx context.Context, orderNumber int64, from, to domain.OrderStatus) (*domain.Order, error) {
	if err := domain.CanTransition(from, to); err != nil {
		return nil, err
	}

	query := `UPDATE orders SET order_status = $1
		WHERE order_number = $2 AND order_status = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, string(to), orderNumber, string(from)))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to change order status: %w", err)
	}

	current, err := r.FindByID(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: order is %s, expected %s", domain.ErrInvalidTransition, current.OrderStatus, from)
}
