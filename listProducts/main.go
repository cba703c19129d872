package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"gitlab.connectwisedev.com/product-listing-service/models"
	"gitlab.connectwisedev.com/product-listing-service/pkg/cache"
	"gitlab.connectwisedev.com/product-listing-service/pkg/config"
	"gitlab.connectwisedev.com/product-listing-service/pkg/database"
	"gitlab.connectwisedev.com/product-listing-service/pkg/listing"
)

var (
	dbClient    *database.DBClient
	cacheClient *cache.Client
	service     *listing.Service
	ctx         = context.Background()
)

func init() {
	config.LoadEnv() // Load environment variables first
	cfg := config.Load()

	var err error
	dbClient, err = database.NewPostgresClient(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize DB client: %v", err)
	}

	cacheClient = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Cache.GetTimeout, cfg.Cache.TTL)

	service = listing.NewService(
		database.NewProductStore(dbClient),
		cacheClient,
		listing.NewPlanner(cfg.SearchFullText),
	)
}

// listResponse is the success body: the result envelope plus observability
// metadata.
type listResponse struct {
	Data          []models.Product    `json:"data"`
	TotalCount    int                 `json:"total_count"`
	Page          int                 `json:"page"`
	Limit         int                 `json:"limit"`
	CacheStatus   listing.CacheStatus `json:"cache_status"`
	ProcessTimeMS int64               `json:"process_time_ms"`
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func handler(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Printf("Received request: %v %v", request.Path, request.QueryStringParameters)

	page, meta, err := service.List(ctx, request.QueryStringParameters)
	if err != nil {
		var validationErr *listing.ValidationError
		if errors.As(err, &validationErr) {
			return respond(http.StatusBadRequest, errorResponse{
				Error:   "invalid_query",
				Details: validationErr.Details(),
			}), nil
		}

		// Everything else is logged in full and surfaced opaquely.
		log.Printf("Listing request failed: %v", err)
		var storeErr *listing.StoreError
		if errors.As(err, &storeErr) {
			return respond(http.StatusServiceUnavailable, errorResponse{Error: "store_unavailable"}), nil
		}
		return respond(http.StatusInternalServerError, errorResponse{Error: "internal_error"}), nil
	}

	log.Printf("Served %d/%d products, cache=%s in %dms", len(page.Data), page.TotalCount, meta.CacheStatus, meta.Duration.Milliseconds())

	return respond(http.StatusOK, listResponse{
		Data:          page.Data,
		TotalCount:    page.TotalCount,
		Page:          page.Page,
		Limit:         page.Limit,
		CacheStatus:   meta.CacheStatus,
		ProcessTimeMS: meta.Duration.Milliseconds(),
	}), nil
}

func respond(status int, body interface{}) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Printf("Error marshaling response body: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error": "internal_error"}`,
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Methods": "GET",
			"Access-Control-Allow-Headers": "Content-Type",
		},
		Body: string(payload),
	}
}

func main() {
	defer dbClient.Close()
	defer cacheClient.Close()
	lambda.Start(handler)
}
