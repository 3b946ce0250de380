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

var ErrImageNotFound = errors.New("image not found")

const imageColumns = `image_id, product_id, file_name, url, sort_order`

// ImageRepository manages product images.
type ImageRepository interface {
	List(ctx context.Context) ([]*domain.ProductImage, error)
	FindByID(ctx context.Context, imageID int64) (*domain.ProductImage, error)
	ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductImage, error)
	Create(ctx context.Context, in *domain.ProductImageInput) (*domain.ProductImage, error)
	CreateBatch(ctx context.Context, productNumber int64, images []domain.ProductImage) ([]*domain.ProductImage, error)
	Update(ctx context.Context, imageID int64, in *domain.ProductImageInput) (*domain.ProductImage, error)
	Delete(ctx context.Context, imageID int64) error
	DeleteByProduct(ctx context.Context, productNumber int64) (int64, error)
}

type imageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) ImageRepository {
	return &imageRepository{db: db}
}

func scanImage(row rowScanner) (*domain.ProductImage, error) {
	img := &domain.ProductImage{}
	if err := row.Scan(&img.ImageID, &img.ProductNumber, &img.FileName, &img.URL, &img.SortOrder); err != nil {
		return nil, err
	}
	return img, nil
}

func (r *imageRepository) query(ctx context.Context, where string, args ...any) ([]*domain.ProductImage, error) {
	query := `SELECT ` + imageColumns + ` FROM product_images ` + where +
		` ORDER BY product_id, sort_order, image_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := []*domain.ProductImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

func (r *imageRepository) List(ctx context.Context) ([]*domain.ProductImage, error) {
	return r.query(ctx, "")
}

func (r *imageRepository) ListByProduct(ctx context.Context, productNumber int64) ([]*domain.ProductImage, error) {
	return r.query(ctx, `WHERE product_id = $1`, productNumber)
}

func (r *imageRepository) FindByID(ctx context.Context, imageID int64) (*domain.ProductImage, error) {
	query := `SELECT ` + imageColumns + ` FROM product_images WHERE image_id = $1`

	img, err := scanImage(r.db.QueryRowContext(ctx, query, imageID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find image: %w", err)
	}
	return img, nil
}

func (r *imageRepository) Create(ctx context.Context, in *domain.ProductImageInput) (*domain.ProductImage, error) {
	query, args, err := sqlbuild.BuildInsert("product_images", sqlbuild.Pick(in), imageColumns)
	if err != nil {
		return nil, err
	}

	img, err := scanImage(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, classify("create image", err)
	}
	return img, nil
}

// CreateBatch records uploaded files for one product in a single transaction.
func (r *imageRepository) CreateBatch(ctx context.Context, productNumber int64, images []domain.ProductImage) ([]*domain.ProductImage, error) {
	query := `
		INSERT INTO product_images (product_id, file_name, url, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + imageColumns

	created := make([]*domain.ProductImage, 0, len(images))
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, image := range images {
			img, err := scanImage(tx.QueryRowContext(ctx, query, productNumber, image.FileName, image.URL, image.SortOrder))
			if err != nil {
				if pgCode(err) == pgForeignKeyViolation {
					return ErrProductNotFound
				}
				return classify("create image", err)
			}
			created = append(created, img)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *imageRepository) Update(ctx context.Context, imageID int64, in *domain.ProductImageInput) (*domain.ProductImage, error) {
	query, args, err := sqlbuild.BuildUpdate("product_images", sqlbuild.Pick(in), "image_id", imageID, imageColumns)
	if err != nil {
		return nil, err
	}

	img, err := scanImage(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, classify("update image", err)
	}
	return img, nil
}

func (r *imageRepository) Delete(ctx context.Context, imageID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_images WHERE image_id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *imageRepository) DeleteByProduct(ctx context.Context, productNumber int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, productNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to delete images: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
