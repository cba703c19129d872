package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"gitlab.connectwisedev.com/product-listing-service/models"
	"gitlab.connectwisedev.com/product-listing-service/pkg/config"
	"gitlab.connectwisedev.com/product-listing-service/pkg/database"
)

var (
	dbClient *database.DBClient
	ctx      = context.Background()
)

func init() {
	config.LoadEnv() // Load environment variables first

	var err error
	dbClient, err = database.NewPostgresClient(config.Load().DB)
	if err != nil {
		log.Fatalf("Failed to initialize DB client: %v", err)
	}
}

// S3EventWrapper is a custom struct to handle either S3 events or direct CSV payload
type S3EventWrapper struct {
	Records []events.S3EventRecord `json:"Records,omitempty"`
	CSVData string                 `json:"csv_data,omitempty"` // For local testing
}

func handler(event S3EventWrapper) error {
	jobID := uuid.New().String()

	var csvContent []byte
	var err error

	if len(event.Records) > 0 {
		s3Record := event.Records[0].S3
		log.Printf("[job %s] Processing S3 event for bucket: %s, key: %s", jobID, s3Record.Bucket.Name, s3Record.Object.Key)

		if os.Getenv("APP_ENV") == "local" {
			// Local S3 simulation reads products.csv from the working directory.
			csvContent, err = os.ReadFile("products.csv")
			if err != nil {
				return fmt.Errorf("failed to read local products.csv for S3 simulation: %w", err)
			}
		} else {
			return fmt.Errorf("S3 event triggered, but S3 download is only simulated outside the local environment")
		}
	} else if event.CSVData != "" {
		log.Printf("[job %s] Processing direct CSV data payload.", jobID)
		csvContent = []byte(event.CSVData)
	} else {
		return fmt.Errorf("no S3 event record or direct CSV data found in the payload")
	}

	reader := csv.NewReader(bytes.NewReader(csvContent))
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) < 2 {
		return fmt.Errorf("CSV is empty or has only headers")
	}

	// Expected column order: name, description, price, category, stock_quantity
	dataRows := records[1:]

	tx, err := dbClient.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback on error by default

	inserted := 0
	for i, row := range dataRows {
		product, err := models.ProductCSVFromRow(row)
		if err != nil {
			log.Printf("[job %s] Skipping row %d: %v", jobID, i+2, err)
			continue
		}

		// UPSERT into PostgreSQL, keyed on product name
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (name, description, price, category, stock_quantity)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (name) DO UPDATE SET
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				category = EXCLUDED.category,
				stock_quantity = EXCLUDED.stock_quantity,
				updated_at = NOW();
		`, product.Name, product.Description, product.Price, product.Category, product.StockQuantity)
		if err != nil {
			// A failed statement aborts the whole Postgres transaction, so
			// the job stops here; the deferred rollback discards it.
			return fmt.Errorf("failed to upsert product %s (row %d): %w", product.Name, i+2, err)
		}
		inserted++
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Cached listing envelopes are left to expire on their TTL; the read
	// path never assumes cache freshness.
	log.Printf("[job %s] Processed %d/%d product rows.", jobID, inserted, len(dataRows))
	return nil
}

func main() {
	defer dbClient.Close()
	lambda.Start(handler)
}
