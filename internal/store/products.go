package store

import (
	"database/sql"
	"fmt"
	"strings"

	"salescope/internal/domain"
	"salescope/internal/events"
)

// ProductStore handles the curated product catalog
type ProductStore struct {
	store *Store
}

// Create inserts a product. A duplicate live name is a conflict.
func (p *ProductStore) Create(actorID int64, name string, minPrice, maxPrice *float64) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &domain.ValidationError{Field: "product_name", Reason: "is required"}
	}

	var id int64
	err := p.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		res, err := tx.Exec(
			"INSERT INTO products (product_name, min_price, max_price) VALUES (?, ?, ?)",
			name, minPrice, maxPrice)
		if err != nil {
			if isUniqueViolation(err) {
				return &domain.ConflictError{Kind: domain.KindProduct, Key: name}
			}
			return fmt.Errorf("failed to create product: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return ew.Log(tx, actorID, "product", id, "product.created", map[string]interface{}{
			"product_name": name,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns one product by id
func (p *ProductStore) Get(productID int64) (*domain.Product, error) {
	row := p.store.db.QueryRow(`
		SELECT product_id, product_name, min_price, max_price, created_at, updated_at, is_deleted
		FROM products WHERE product_id = ?
	`, productID)

	var product domain.Product
	err := row.Scan(&product.ProductID, &product.ProductName, &product.MinPrice,
		&product.MaxPrice, &product.CreatedAt, &product.UpdatedAt, &product.IsDeleted)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Kind: domain.KindProduct, ID: productID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}
	return &product, nil
}

// List returns all live products ordered by name
func (p *ProductStore) List() ([]*domain.Product, error) {
	rows, err := p.store.db.Query(`
		SELECT product_id, product_name, min_price, max_price, created_at, updated_at, is_deleted
		FROM products WHERE is_deleted = 0 ORDER BY product_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ProductID, &product.ProductName, &product.MinPrice,
			&product.MaxPrice, &product.CreatedAt, &product.UpdatedAt, &product.IsDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &product)
	}
	return products, rows.Err()
}
