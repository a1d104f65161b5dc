package search

import (
	"encoding/json"
	"testing"
	"time"

	"skybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchQuery(t *testing.T) {
	q := buildSearchQuery(models.FlightSearchParams{Origin: "bog", Destination: "MDE", Date: "2025-06-10"})

	raw, err := json.Marshal(q)
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, `"origin_code":"BOG"`)
	assert.Contains(t, body, `"destination_code":"MDE"`)
	assert.Contains(t, body, `"gte":"2025-06-10T00:00:00Z"`)
	assert.Contains(t, body, `"is_active":true`)
}

func TestBuildSearchQueryWithoutFilters(t *testing.T) {
	q := buildSearchQuery(models.FlightSearchParams{})

	filters := q["bool"].(map[string]any)["filter"].([]map[string]any)
	assert.Len(t, filters, 1)
}

func TestNewFlightDocument(t *testing.T) {
	dep := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	flight := &models.Flight{ID: 9, Number: "AV120", DepartureAt: dep, ArrivalAt: dep.Add(time.Hour), Status: models.FlightScheduled, IsActive: true}

	doc := NewFlightDocument(flight,
		&models.Airport{Code: "BOG", City: "Bogota"},
		&models.Airport{Code: "MDE", City: "Medellin"})

	assert.Equal(t, int64(9), doc.ID)
	assert.Equal(t, "BOG", doc.OriginCode)
	assert.Equal(t, "Medellin", doc.DestinationCity)
	assert.True(t, doc.IsActive)

	empty := NewFlightDocument(flight, nil, nil)
	assert.Empty(t, empty.OriginCode)
}
