package main

import (
	"context"
	"fmt"
	"time"

	"skybook/internal/config"
	"skybook/internal/database"
	"skybook/internal/logger"
	"skybook/internal/models"
	"skybook/internal/repository"
	"skybook/internal/search"

	"github.com/spf13/pflag"
)

func main() {
	batchSize := pflag.Int("batch-size", 500, "flights sent per bulk request")
	pflag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting flight reindex", "index", cfg.Elasticsearch.Index)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	index, err := search.NewFlightIndex(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	repos := repository.NewRepositories(db)
	if err := reindex(context.Background(), repos.Flights, repos.Airports, index, *batchSize); err != nil {
		logger.Fatal("Flight reindex failed", "error", err)
	}
}

type flightLister interface {
	ListActive(ctx context.Context) ([]models.Flight, error)
}

type airportLister interface {
	List(ctx context.Context) ([]models.Airport, error)
}

type bulkIndexer interface {
	BulkIndex(ctx context.Context, docs []search.FlightDocument) (int, error)
}

func reindex(ctx context.Context, flights flightLister, airports airportLister, index bulkIndexer, batchSize int) error {
	start := time.Now()

	active, err := flights.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list flights: %w", err)
	}
	all, err := airports.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list airports: %w", err)
	}

	docs := buildDocuments(active, all)
	if batchSize <= 0 {
		batchSize = len(docs)
	}

	indexed := 0
	for from := 0; from < len(docs); from += batchSize {
		to := min(from+batchSize, len(docs))
		n, err := index.BulkIndex(ctx, docs[from:to])
		indexed += n
		if err != nil {
			return fmt.Errorf("failed to index flights %d-%d: %w", from, to, err)
		}
		logger.Get().Info("Indexed batch", "from", from, "to", to)
	}

	elapsed := time.Since(start)
	logger.Get().Info("Flight reindex completed",
		"flights", len(docs),
		"indexed", indexed,
		"duration", elapsed.String())
	return nil
}

// buildDocuments связывает рейсы с аэропортами; рейс без аэропорта индексируется без кодов
func buildDocuments(flights []models.Flight, airports []models.Airport) []search.FlightDocument {
	byID := make(map[int64]*models.Airport, len(airports))
	for i := range airports {
		byID[airports[i].ID] = &airports[i]
	}

	docs := make([]search.FlightDocument, 0, len(flights))
	for i := range flights {
		f := &flights[i]
		docs = append(docs, search.NewFlightDocument(f, byID[f.OriginID], byID[f.DestinationID]))
	}
	return docs
}
