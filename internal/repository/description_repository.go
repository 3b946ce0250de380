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

var ErrDescriptionNotFound = errors.New("description not found")

const descriptionColumns = `description_id, product_number, title, text, sort_order`

type DescriptionRepository interface {
	List(ctx context.Context) ([]*domain.ProductDescription, error)
	FindByID(ctx context.Context, descriptionID int64) (*domain.ProductDescription, error)
	ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductDescription, error)
	CreateBatch(ctx context.Context, productNumber int64, items []domain.DescriptionInput) ([]*domain.ProductDescription, error)
	Update(ctx context.Context, descriptionID int64, patch *domain.DescriptionPatch) (*domain.ProductDescription, error)
	Delete(ctx context.Context, descriptionID int64) error
	DeleteByProduct(ctx context.Context, productNumber int64) (int64, error)
}

type descriptionRepository struct {
	db *sql.DB
}

func NewDescriptionRepository(db *sql.DB) DescriptionRepository {
	return &descriptionRepository{db: db}
}

func scanDescription(row rowScanner) (*domain.ProductDescription, error) {
	d := &domain.ProductDescription{}
	if err := row.Scan(&d.DescriptionID, &d.ProductNumber, &d.Title, &d.Text, &d.SortOrder); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *descriptionRepository) query(ctx context.Context, where string, args ...any) ([]*domain.ProductDescription, error) {
	query := `SELECT ` + descriptionColumns + ` FROM product_descriptions ` + where +
		` ORDER BY product_number, sort_order, description_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptions: %w", err)
	}
	defer rows.Close()

	descriptions := []*domain.ProductDescription{}
	for rows.Next() {
		d, err := scanDescription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan description: %w", err)
		}
		descriptions = append(descriptions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating descriptions: %w", err)
	}

	return descriptions, nil
}

func (r *descriptionRepository) List(ctx context.Context) ([]*domain.ProductDescription, error) {
	return r.query(ctx, "")
}

func (r *descriptionRepository) ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductDescription, error) {
	return r.query(ctx, `WHERE product_number = $1`, productNumber)
}

func (r *descriptionRepository) FindByID(ctx context.Context, descriptionID int64) (*domain.ProductDescription, error) {
	query := `SELECT ` + descriptionColumns + ` FROM product_descriptions WHERE description_id = $1`

	d, err := scanDescription(r.db.QueryRowContext(ctx, query, descriptionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDescriptionNotFound
		}
		return nil, fmt.Errorf("failed to find description: %w", err)
	}
	return d, nil
}

// CreateBatch inserts all items or none.
func (r *descriptionRepository) CreateBatch(ctx context.Context, productNumber int64, items []domain.DescriptionInput) ([]*domain.ProductDescription, error) {
	var created []*domain.ProductDescription
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		created, err = insertDescriptions(ctx, tx, productNumber, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// insertDescriptions numbers items by position; it is shared with product
// creation so both run inside the caller's transaction.
func insertDescriptions(ctx context.Context, tx *sql.Tx, productNumber int64, items []domain.DescriptionInput) ([]*domain.ProductDescription, error) {
	query := `
		INSERT INTO product_descriptions (product_number, title, text, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + descriptionColumns

	created := make([]*domain.ProductDescription, 0, len(items))
	for i, item := range items {
		d, err := scanDescription(tx.QueryRowContext(ctx, query, productNumber, item.Title, item.Text, i))
		if err != nil {
			if pgCode(err) == pgForeignKeyViolation {
				return nil, ErrProductNotFound
			}
			return nil, classify("create description", err)
		}
		created = append(created, d)
	}
	return created, nil
}

func (r *descriptionRepository) Update(ctx context.Context, descriptionID int64, patch *domain.DescriptionPatch) (*domain.ProductDescription, error) {
	query, args, err := sqlbuild.BuildUpdate("product_descriptions", sqlbuild.Pick(patch), "description_id", descriptionID, descriptionColumns)
	if err != nil {
		return nil, err
	}

	d, err := scanDescription(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDescriptionNotFound
		}
		return nil, classify("update description", err)
	}
	return d, nil
}

func (r *descriptionRepository) Delete(ctx context.Context, descriptionID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_descriptions WHERE description_id = $1`, descriptionID)
	if err != nil {
		return fmt.Errorf("failed to delete description: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDescriptionNotFound
	}
	return nil
}

// DeleteByProduct reports how many rows were removed; zero is not an error.
func (r *descriptionRepository) DeleteByProduct(ctx context.Context, productNumber int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_descriptions WHERE product_number = $1`, productNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to delete descriptions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
