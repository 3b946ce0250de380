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

var ErrPaymentMethodNotFound = errors.New("payment method not found")

const paymentColumns = `payment_id, user_number, card_holder_name, card_number, expiry_month,
	expiry_year, billing_address, is_default, created_at`

// PaymentRepository keeps at most one default among a user's live cards.
// Every mutation locks the owner's user row first, so changes for one user
// are serialized; the partial unique index is the backstop.
type PaymentRepository interface {
	List(ctx context.Context) ([]*domain.PaymentMethod, error)
	FindByID(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error)
	ListByUser(ctx context.Context, userNumber int64) ([]*domain.PaymentMethod, error)
	FindDefaultByUser(ctx context.Context, userNumber int64) (*domain.PaymentMethod, error)
	Create(ctx context.Context, in *domain.PaymentInput) (*domain.PaymentMethod, error)
	Update(ctx context.Context, paymentID int64, in *domain.PaymentInput) (*domain.PaymentMethod, error)
	SoftDelete(ctx context.Context, paymentID int64) error
	SetDefault(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error)
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// scanPayment masks the card number as it leaves the store.
func scanPayment(row rowScanner) (*domain.PaymentMethod, error) {
	pm := &domain.PaymentMethod{}
	err := row.Scan(
		&pm.PaymentID,
		&pm.UserNumber,
		&pm.CardHolderName,
		&pm.CardNumber,
		&pm.ExpiryMonth,
		&pm.ExpiryYear,
		&pm.BillingAddress,
		&pm.IsDefault,
		&pm.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	pm.CardNumber = domain.MaskCardNumber(pm.CardNumber)
	return pm, nil
}

func (r *paymentRepository) query(ctx context.Context, where, order string, args ...any) ([]*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_methods WHERE is_deleted = 0 ` + where + ` ORDER BY ` + order

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer rows.Close()

	methods := []*domain.PaymentMethod{}
	for rows.Next() {
		pm, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		methods = append(methods, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment methods: %w", err)
	}

	return methods, nil
}

func (r *paymentRepository) List(ctx context.Context) ([]*domain.PaymentMethod, error) {
	return r.query(ctx, "", "payment_id DESC")
}

// ListByUser puts the default card first, then newest first.
func (r *paymentRepository) ListByUser(ctx context.Context, userNumber int64) ([]*domain.PaymentMethod, error) {
	return r.query(ctx, "AND user_number = $1", "is_default DESC, payment_id DESC", userNumber)
}

func (r *paymentRepository) FindByID(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error) {
	return findPayment(ctx, r.db, paymentID)
}

// FindDefaultByUser returns nil when the user has no default card.
func (r *paymentRepository) FindDefaultByUser(ctx context.Context, userNumber int64) (*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_methods
		WHERE user_number = $1 AND is_default = 1 AND is_deleted = 0
		LIMIT 1`

	pm, err := scanPayment(r.db.QueryRowContext(ctx, query, userNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find default payment method: %w", err)
	}
	return pm, nil
}

// Create inserts a card. It becomes the default when asked to, or when the
// user has no live default yet.
func (r *paymentRepository) Create(ctx context.Context, in *domain.PaymentInput) (*domain.PaymentMethod, error) {
	if in.UserNumber == nil {
		return nil, fmt.Errorf("%w: userNumber is required", ErrConstraint)
	}
	userNumber := *in.UserNumber

	cols := sqlbuild.Pick(in)
	cols["is_default"] = 0

	query, args, err := sqlbuild.BuildInsert("payment_methods", cols, "payment_id")
	if err != nil {
		return nil, err
	}

	var created *domain.PaymentMethod
	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockUser(ctx, tx, userNumber); err != nil {
			return err
		}

		var hasDefault bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM payment_methods WHERE user_number = $1 AND is_default = 1 AND is_deleted = 0)`,
			userNumber).Scan(&hasDefault)
		if err != nil {
			return fmt.Errorf("failed to check default payment method: %w", err)
		}

		var paymentID int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&paymentID); err != nil {
			return classify("create payment method", err)
		}

		if (in.IsDefault != nil && *in.IsDefault == 1) || !hasDefault {
			if err := setOnlyDefault(ctx, tx, userNumber, paymentID); err != nil {
				return err
			}
		}

		created, err = findPayment(ctx, tx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update applies a partial change. isDefault=1 promotes the card through
// setOnlyDefault before the remaining fields are written.
func (r *paymentRepository) Update(ctx context.Context, paymentID int64, in *domain.PaymentInput) (*domain.PaymentMethod, error) {
	cols := sqlbuild.Pick(in)
	promote := in.IsDefault != nil && *in.IsDefault == 1
	if promote {
		delete(cols, "is_default")
	}

	var updated *domain.PaymentMethod
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		userNumber, _, err := lockPaymentOwner(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		if promote {
			if err := setOnlyDefault(ctx, tx, userNumber, paymentID); err != nil {
				return err
			}
		}

		if len(cols) > 0 {
			query, args, err := sqlbuild.BuildUpdate("payment_methods", cols, "payment_id", paymentID, "")
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return classify("update payment method", err)
			}
		} else if !promote {
			return sqlbuild.ErrNoFields
		}

		updated, err = findPayment(ctx, tx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SoftDelete hides the card. When it was the default, the newest remaining
// card of the same user is promoted.
func (r *paymentRepository) SoftDelete(ctx context.Context, paymentID int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		userNumber, wasDefault, err := lockPaymentOwner(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE payment_methods SET is_deleted = 1, is_default = 0 WHERE payment_id = $1`, paymentID)
		if err != nil {
			return fmt.Errorf("failed to delete payment method: %w", err)
		}

		if !wasDefault {
			return nil
		}

		var nextID int64
		err = tx.QueryRowContext(ctx,
			`SELECT payment_id FROM payment_methods
			 WHERE user_number = $1 AND is_deleted = 0
			 ORDER BY payment_id DESC LIMIT 1`, userNumber).Scan(&nextID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find next default payment method: %w", err)
		}

		return setOnlyDefault(ctx, tx, userNumber, nextID)
	})
}

func (r *paymentRepository) SetDefault(ctx context.Context, paymentID int64) (*domain.PaymentMethod, error) {
	var pm *domain.PaymentMethod
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		userNumber, _, err := lockPaymentOwner(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if err := setOnlyDefault(ctx, tx, userNumber, paymentID); err != nil {
			return err
		}
		pm, err = findPayment(ctx, tx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pm, nil
}

// setOnlyDefault clears every other default of the user before flagging
// paymentID, keeping the partial unique index satisfied at each step.
func setOnlyDefault(ctx context.Context, tx *sql.Tx, userNumber, paymentID int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payment_methods SET is_default = 0
		 WHERE user_number = $1 AND payment_id <> $2 AND is_default = 1`,
		userNumber, paymentID)
	if err != nil {
		return fmt.Errorf("failed to clear default payment method: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE payment_methods SET is_default = 1 WHERE payment_id = $1`, paymentID)
	if err != nil {
		return classify("set default payment method", err)
	}
	return nil
}

func lockUser(ctx context.Context, tx *sql.Tx, userNumber int64) error {
	var locked int64
	err := tx.QueryRowContext(ctx,
		`SELECT user_number FROM users WHERE user_number = $1 FOR UPDATE`, userNumber).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user %d", ErrReferenceNotFound, userNumber)
		}
		return fmt.Errorf("failed to lock user: %w", err)
	}
	return nil
}

// lockPaymentOwner locks the owner of a live card and reports whether the
// card is currently the default. The card is re-read after the lock so a
// concurrent delete is observed.
func lockPaymentOwner(ctx context.Context, tx *sql.Tx, paymentID int64) (int64, bool, error) {
	var userNumber int64
	err := tx.QueryRowContext(ctx,
		`SELECT user_number FROM payment_methods WHERE payment_id = $1 AND is_deleted = 0`,
		paymentID).Scan(&userNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrPaymentMethodNotFound
		}
		return 0, false, fmt.Errorf("failed to find payment method: %w", err)
	}

	if err := lockUser(ctx, tx, userNumber); err != nil {
		return 0, false, err
	}

	var isDefault int
	err = tx.QueryRowContext(ctx,
		`SELECT is_default FROM payment_methods
		 WHERE payment_id = $1 AND user_number = $2 AND is_deleted = 0
		 FOR UPDATE`,
		paymentID, userNumber).Scan(&isDefault)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrPaymentMethodNotFound
		}
		return 0, false, fmt.Errorf("failed to lock payment method: %w", err)
	}

	return userNumber, isDefault == 1, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findPayment(ctx context.Context, q rowQuerier, paymentID int64) (*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_methods WHERE payment_id = $1 AND is_deleted = 0`

	pm, err := scanPayment(q.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to find payment method: %w", err)
	}
	return pm, nil
}
