package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"skybook/internal/config"
	"skybook/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

// FlightDocument - документ рейса в поисковом индексе
type FlightDocument struct {
	ID              int64     `json:"id"`
	Number          string    `json:"number"`
	OriginCode      string    `json:"origin_code"`
	OriginCity      string    `json:"origin_city"`
	DestinationCode string    `json:"destination_code"`
	DestinationCity string    `json:"destination_city"`
	DepartureAt     time.Time `json:"departure_at"`
	ArrivalAt       time.Time `json:"arrival_at"`
	Status          string    `json:"status"`
	BasePriceCents  int64     `json:"base_price_cents"`
	Direct          bool      `json:"direct"`
	IsActive        bool      `json:"is_active"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewFlightDocument builds the index document of a flight
func NewFlightDocument(f *models.Flight, origin, destination *models.Airport) FlightDocument {
	doc := FlightDocument{
		ID:             f.ID,
		Number:         f.Number,
		DepartureAt:    f.DepartureAt,
		ArrivalAt:      f.ArrivalAt,
		Status:         f.Status,
		BasePriceCents: f.BasePriceCents,
		Direct:         f.Direct,
		IsActive:       f.IsActive,
		UpdatedAt:      f.UpdatedAt,
	}
	if origin != nil {
		doc.OriginCode = origin.Code
		doc.OriginCity = origin.City
	}
	if destination != nil {
		doc.DestinationCode = destination.Code
		doc.DestinationCity = destination.City
	}
	return doc
}

// FlightIndex - клиент поискового индекса рейсов
type FlightIndex struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// NewFlightIndex создает клиент Elasticsearch и индекс рейсов при необходимости
func NewFlightIndex(cfg config.ElasticsearchConfig) (*FlightIndex, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	idx := &FlightIndex{client: es, config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := idx.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return idx, nil
}

func indexMapping() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":               map[string]any{"type": "long"},
				"number":           map[string]any{"type": "keyword"},
				"origin_code":      map[string]any{"type": "keyword"},
				"origin_city":      map[string]any{"type": "text"},
				"destination_code": map[string]any{"type": "keyword"},
				"destination_city": map[string]any{"type": "text"},
				"departure_at":     map[string]any{"type": "date"},
				"arrival_at":       map[string]any{"type": "date"},
				"status":           map[string]any{"type": "keyword"},
				"base_price_cents": map[string]any{"type": "long"},
				"direct":           map[string]any{"type": "boolean"},
				"is_active":        map[string]any{"type": "boolean"},
				"updated_at":       map[string]any{"type": "date"},
			},
		},
	}
}

func (c *FlightIndex) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Debug("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mappingJSON, err := json.Marshal(indexMapping())
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(mappingJSON),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// Index stores or replaces a flight document
func (c *FlightIndex) Index(ctx context.Context, doc FlightDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal flight: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index flight: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}
	return nil
}

// BulkIndex loads many documents through the bulk API and returns the number indexed
func (c *FlightIndex) BulkIndex(ctx context.Context, docs []FlightDocument) (int, error) {
	indexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     c.client,
		Index:      c.config.Index,
		NumWorkers: 2,
		Refresh:    "wait_for",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for _, doc := range docs {
		body, err := json.Marshal(doc)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal flight %d: %w", doc.ID, err)
		}
		err = indexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: strconv.FormatInt(doc.ID, 10),
			Body:       bytes.NewReader(body),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					slog.Error("Bulk index failed", "document_id", item.DocumentID, "error", err)
					return
				}
				slog.Error("Bulk index failed", "document_id", item.DocumentID, "reason", res.Error.Reason)
			},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to queue flight %d: %w", doc.ID, err)
		}
	}

	if err := indexer.Close(ctx); err != nil {
		return 0, fmt.Errorf("failed to flush bulk indexer: %w", err)
	}

	stats := indexer.Stats()
	if stats.NumFailed > 0 {
		return int(stats.NumIndexed), fmt.Errorf("%d flights failed to index", stats.NumFailed)
	}
	return int(stats.NumIndexed), nil
}

// Search returns the ids of active flights matching the route and date,
// ordered by departure
func (c *FlightIndex) Search(ctx context.Context, params models.FlightSearchParams) ([]int64, error) {
	from := 0
	size := params.PageSize
	if size <= 0 {
		size = 20
	}
	if params.Page > 1 {
		from = (params.Page - 1) * size
	}

	searchRequest := map[string]any{
		"query":   buildSearchQuery(params),
		"sort":    []map[string]any{{"departure_at": map[string]any{"order": "asc"}}},
		"from":    from,
		"size":    size,
		"_source": []string{"id"},
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(searchJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]int64, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		ids[i] = hit.Source.ID
	}
	return ids, nil
}

// buildSearchQuery строит поисковый запрос по маршруту и дате вылета
func buildSearchQuery(params models.FlightSearchParams) map[string]any {
	filters := []map[string]any{
		{"term": map[string]any{"is_active": true}},
	}

	if params.Origin != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"origin_code": strings.ToUpper(params.Origin)},
		})
	}
	if params.Destination != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"destination_code": strings.ToUpper(params.Destination)},
		})
	}
	if params.Date != "" {
		filters = append(filters, map[string]any{
			"range": map[string]any{
				"departure_at": map[string]any{
					"gte": params.Date + "T00:00:00Z",
					"lt":  params.Date + "T00:00:00Z||+1d",
				},
			},
		})
	}

	return map[string]any{
		"bool": map[string]any{
			"filter": filters,
		},
	}
}

// HealthCheck проверяет состояние Elasticsearch
func (c *FlightIndex) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}
	return nil
}
