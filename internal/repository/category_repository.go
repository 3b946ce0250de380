package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"electro-shop/internal/domain"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
)

// Each category is listed with the url of its most recent image.
const categorySelect = `
	SELECT c.category_number, c.category_name, img.url
	FROM categories c
	LEFT JOIN LATERAL (
		SELECT ci.url
		FROM category_images ci
		WHERE ci.category_id = c.category_number
		ORDER BY ci.image_id DESC
		LIMIT 1
	) img ON TRUE
`

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, name string) (*domain.Category, bool, error)
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, categoryNumber int64) (*domain.Category, error)
	Update(ctx context.Context, categoryNumber int64, name string) (*domain.Category, error)
	Delete(ctx context.Context, categoryNumber int64) error
	AddImage(ctx context.Context, categoryNumber int64, fileName, url string) (*domain.CategoryImage, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	if err := row.Scan(&category.CategoryNumber, &category.CategoryName, &category.Image); err != nil {
		return nil, err
	}
	return category, nil
}

// Create inserts the category unless the name is taken, ignoring case. The
// boolean is false when the existing row is returned instead.
func (r *categoryRepository) Create(ctx context.Context, name string) (*domain.Category, bool, error) {
	query := `
		INSERT INTO categories (category_name)
		VALUES ($1)
		ON CONFLICT ((lower(category_name))) DO NOTHING
		RETURNING category_number, category_name, NULL::VARCHAR
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, name))
	if err == nil {
		return category, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, classify("create category", err)
	}

	existing, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+` WHERE lower(c.category_name) = lower($1)`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Deleted between the two statements.
			return nil, false, ErrCategoryNotFound
		}
		return nil, false, fmt.Errorf("failed to find category by name: %w", err)
	}

	return existing, false, nil
}

// List retrieves all categories
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+` ORDER BY c.category_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, categoryNumber int64) (*domain.Category, error) {
	category, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+` WHERE c.category_number = $1`, categoryNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

func (r *categoryRepository) Update(ctx context.Context, categoryNumber int64, name string) (*domain.Category, error) {
	query := `
		WITH updated AS (
			UPDATE categories SET category_name = $1
			WHERE category_number = $2
			RETURNING category_number, category_name
		)
		SELECT u.category_number, u.category_name,
			(SELECT ci.url FROM category_images ci
			 WHERE ci.category_id = u.category_number
			 ORDER BY ci.image_id DESC LIMIT 1)
		FROM updated u
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, name, categoryNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %w", ErrCategoryAlreadyExists, err)
		}
		return nil, classify("update category", err)
	}

	return category, nil
}

// Delete removes the category; its products keep existing uncategorized.
func (r *categoryRepository) Delete(ctx context.Context, categoryNumber int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE category_number = $1`, categoryNumber)
	if err != nil {
		return classify("delete category", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *categoryRepository) AddImage(ctx context.Context, categoryNumber int64, fileName, url string) (*domain.CategoryImage, error) {
	query := `
		INSERT INTO category_images (category_id, file_name, url)
		VALUES ($1, $2, $3)
		RETURNING image_id, category_id, file_name, url, created_at
	`

	image := &domain.CategoryImage{}
	err := r.db.QueryRowContext(ctx, query, categoryNumber, fileName, url).Scan(
		&image.ImageID,
		&image.CategoryNumber,
		&image.FileName,
		&image.URL,
		&image.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, ErrCategoryNotFound
		}
		return nil, classify("add category image", err)
	}

	return image, nil
}
