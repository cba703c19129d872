package database

import (
	"context"
	"database/sql"
	"fmt"

	"gitlab.connectwisedev.com/product-listing-service/models"
	"gitlab.connectwisedev.com/product-listing-service/pkg/listing"
)

// ProductStore runs planned listing queries against PostgreSQL.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a store backed by the shared connection pool.
func NewProductStore(client *DBClient) *ProductStore {
	return &ProductStore{db: client.GetDB()}
}

// CountProducts executes the plan's count query.
func (s *ProductStore) CountProducts(ctx context.Context, plan listing.QueryPlan) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, plan.CountSQL, plan.CountArgs...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// QueryProducts executes the plan's data query and scans the page of rows.
func (s *ProductStore) QueryProducts(ctx context.Context, plan listing.QueryPlan) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, plan.DataSQL, plan.DataArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return products, nil
}
