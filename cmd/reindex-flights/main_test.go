package main

import (
	"context"
	"errors"
	"testing"

	"skybook/internal/models"
	"skybook/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFlights []models.Flight

func (s staticFlights) ListActive(context.Context) ([]models.Flight, error) { return s, nil }

type staticAirports []models.Airport

func (s staticAirports) List(context.Context) ([]models.Airport, error) { return s, nil }

type recordingIndex struct {
	batches [][]search.FlightDocument
	err     error
}

func (r *recordingIndex) BulkIndex(_ context.Context, docs []search.FlightDocument) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.batches = append(r.batches, docs)
	return len(docs), nil
}

var (
	testAirports = staticAirports{
		{ID: 1, Code: "BOG", City: "Bogota"},
		{ID: 2, Code: "MDE", City: "Medellin"},
	}
	testFlights = staticFlights{
		{ID: 10, Number: "AV204", OriginID: 1, DestinationID: 2, IsActive: true},
		{ID: 11, Number: "AV205", OriginID: 2, DestinationID: 1, IsActive: true},
		{ID: 12, Number: "AV206", OriginID: 1, DestinationID: 2, IsActive: true},
	}
)

func TestBuildDocumentsResolvesAirports(t *testing.T) {
	docs := buildDocuments(testFlights, testAirports)

	require.Len(t, docs, 3)
	assert.Equal(t, "BOG", docs[0].OriginCode)
	assert.Equal(t, "Medellin", docs[0].DestinationCity)
	assert.Equal(t, "MDE", docs[1].OriginCode)
}

func TestBuildDocumentsUnknownAirport(t *testing.T) {
	docs := buildDocuments([]models.Flight{{ID: 1, OriginID: 99, DestinationID: 1}}, testAirports)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].OriginCode)
	assert.Equal(t, "BOG", docs[0].DestinationCode)
}

func TestReindexBatches(t *testing.T) {
	index := &recordingIndex{}
	require.NoError(t, reindex(context.Background(), testFlights, testAirports, index, 2))

	require.Len(t, index.batches, 2)
	assert.Len(t, index.batches[0], 2)
	assert.Len(t, index.batches[1], 1)
	assert.Equal(t, int64(12), index.batches[1][0].ID)
}

func TestReindexPropagatesIndexError(t *testing.T) {
	index := &recordingIndex{err: errors.New("cluster red")}
	err := reindex(context.Background(), testFlights, testAirports, index, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster red")
}
