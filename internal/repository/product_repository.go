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
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product is out of stock")
)

const productColumns = `product_number, product_name, barcode, brand, category_number,
	buying_price, selling_price, in_stock`

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	ListFull(ctx context.Context) ([]*domain.ProductSummary, error)
	ListByBrand(ctx context.Context, brand string) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryNumber int64) ([]*domain.Product, error)
	FindByID(ctx context.Context, productNumber int64) (*domain.Product, error)
	Create(ctx context.Context, in *domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, productNumber int64, in *domain.ProductInput) (*domain.Product, error)
	DecrementStock(ctx context.Context, productNumber int64) (*domain.Product, error)
	Delete(ctx context.Context, productNumber int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ProductNumber,
		&product.ProductName,
		&product.Barcode,
		&product.Brand,
		&product.CategoryNumber,
		&product.BuyingPrice,
		&product.SellingPrice,
		&product.InStock,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) query(ctx context.Context, where string, args ...any) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ` + where + ` ORDER BY product_number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.query(ctx, "")
}

func (r *productRepository) ListByBrand(ctx context.Context, brand string) ([]*domain.Product, error) {
	return r.query(ctx, `WHERE brand = $1`, brand)
}

func (r *productRepository) ListByCategory(ctx context.Context, categoryNumber int64) ([]*domain.Product, error) {
	return r.query(ctx, `WHERE category_number = $1`, categoryNumber)
}

// ListFull joins every product with its category name and first image.
func (r *productRepository) ListFull(ctx context.Context) ([]*domain.ProductSummary, error) {
	query := `
		SELECT p.product_number, p.product_name, p.barcode, p.brand, p.category_number,
			p.buying_price, p.selling_price, p.in_stock,
			c.category_name, img.url
		FROM products p
		LEFT JOIN categories c ON c.category_number = p.category_number
		LEFT JOIN LATERAL (
			SELECT pi.url
			FROM product_images pi
			WHERE pi.product_id = p.product_number
			ORDER BY pi.sort_order, pi.image_id
			LIMIT 1
		) img ON TRUE
		ORDER BY p.product_number
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list full products: %w", err)
	}
	defer rows.Close()

	products := []*domain.ProductSummary{}
	for rows.Next() {
		p := &domain.ProductSummary{}
		err := rows.Scan(
			&p.ProductNumber,
			&p.ProductName,
			&p.Barcode,
			&p.Brand,
			&p.CategoryNumber,
			&p.BuyingPrice,
			&p.SellingPrice,
			&p.InStock,
			&p.CategoryName,
			&p.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, productNumber int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_number = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, productNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// Create inserts the product and its optional descriptions atomically.
func (r *productRepository) Create(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	query, args, err := sqlbuild.BuildInsert("products", sqlbuild.Pick(in), productColumns)
	if err != nil {
		return nil, err
	}

	var product *domain.Product
	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		product, err = scanProduct(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			return classify("create product", err)
		}

		if len(in.Descriptions) > 0 {
			if _, err := insertDescriptions(ctx, tx, product.ProductNumber, in.Descriptions); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) Update(ctx context.Context, productNumber int64, in *domain.ProductInput) (*domain.Product, error) {
	query, args, err := sqlbuild.BuildUpdate("products", sqlbuild.Pick(in), "product_number", productNumber, productColumns)
	if err != nil {
		return nil, err
	}

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, classify("update product", err)
	}

	return product, nil
}

// DecrementStock takes one unit out of stock in a single conditional
// statement, so concurrent buyers can never drive stock below zero.
func (r *productRepository) DecrementStock(ctx context.Context, productNumber int64) (*domain.Product, error) {
	query := `
		UPDATE products SET in_stock = in_stock - 1
		WHERE product_number = $1 AND in_stock > 0
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, productNumber))
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	if _, err := r.FindByID(ctx, productNumber); err != nil {
		return nil, err
	}
	return nil, ErrOutOfStock
}

func (r *productRepository) Delete(ctx context.Context, productNumber int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE product_number = $1`, productNumber)
	if err != nil {
		return classify("delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
