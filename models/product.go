package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Product is a read-only projection of a catalog row. The listing path
// never mutates it.
type Product struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductPage is one page of listing results. TotalCount is the size of the
// filtered population, independent of the pagination window.
type ProductPage struct {
	Data       []Product `json:"data"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
}

// ProductCSV represents a product as read from a bulk-upload CSV file
type ProductCSV struct {
	Name          string  `csv:"name"`
	Description   string  `csv:"description"`
	Price         float64 `csv:"price"`
	Category      string  `csv:"category"`
	StockQuantity int     `csv:"stock_quantity"`
}

// ProductCSVFromRow maps one CSV data row to a ProductCSV. Column order:
// name, description, price, category, stock_quantity.
func ProductCSVFromRow(row []string) (ProductCSV, error) {
	if len(row) < 5 {
		return ProductCSV{}, fmt.Errorf("expected 5 columns, got %d", len(row))
	}
	if row[0] == "" {
		return ProductCSV{}, errors.New("empty product name")
	}

	price, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return ProductCSV{}, fmt.Errorf("invalid price %q: %w", row[2], err)
	}
	qty, err := strconv.Atoi(row[4])
	if err != nil {
		return ProductCSV{}, fmt.Errorf("invalid stock quantity %q: %w", row[4], err)
	}

	return ProductCSV{
		Name:          row[0],
		Description:   row[1],
		Price:         price,
		Category:      row[3],
		StockQuantity: qty,
	}, nil
}
