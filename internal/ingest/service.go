// Package ingest orchestrates the normalize-enrich-store path for incoming
// measurement uploads.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/soil-data-ingest-service/internal/domain"
	"github.com/couchcryptid/soil-data-ingest-service/internal/observability"
)

// BatchInserter writes a normalized batch to the storage gateway.
type BatchInserter interface {
	InsertBatch(ctx context.Context, batch []domain.Measurement) (int, error)
	Ping(ctx context.Context) error
}

// Service runs one upload through normalization, best-effort geocoding
// enrichment, and a single batch write.
type Service struct {
	store    BatchInserter
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates an ingest Service. Pass a nil geocoder to disable enrichment.
func New(store BatchInserter, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Ingest normalizes the raw request body, enriches each record in input
// order, and persists the batch in one transaction. It returns the number of
// records stored.
//
// Normalization errors (domain.ErrEmptyPayload, domain.ErrInvalidPayload,
// domain.ErrNoValidRecords) are returned before any write happens.
func (s *Service) Ingest(ctx context.Context, body []byte) (int, error) {
	start := time.Now()

	batch, err := domain.NormalizeBatch(body)
	if err != nil {
		s.metrics.InvalidPayloads.Inc()
		return 0, err
	}
	s.metrics.RecordsReceived.Add(float64(len(batch)))

	for i := range batch {
		batch[i] = domain.EnrichWithPlaceName(ctx, batch[i], s.geocoder, s.logger)
	}

	stored, err := s.store.InsertBatch(ctx, batch)
	if err != nil {
		s.metrics.StorageErrors.Inc()
		return 0, err
	}

	s.metrics.RecordsStored.Add(float64(stored))
	s.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("batch ingested", "records", stored, "duration", time.Since(start))
	return stored, nil
}

// CheckReadiness reports whether the storage gateway is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.store.Ping(ctx)
}
