package nominatim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/soil-data-ingest-service/internal/domain"
)

type countingGeocoder struct {
	result domain.PlaceResult
	err    error
	calls  int
}

func (c *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.PlaceResult, error) {
	c.calls++
	return c.result, c.err
}

func TestCachedGeocoder_SecondLookupHitsCache(t *testing.T) {
	inner := &countingGeocoder{result: domain.PlaceResult{DisplayName: "Menteng"}}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	for i := 0; i < 3; i++ {
		result, err := cached.ReverseGeocode(context.Background(), -6.2, 106.8)
		require.NoError(t, err)
		assert.Equal(t, "Menteng", result.DisplayName)
	}

	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_NearbyCoordinatesShareEntry(t *testing.T) {
	inner := &countingGeocoder{result: domain.PlaceResult{DisplayName: "Menteng"}}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	// Within the 4-decimal rounding these are the same key.
	_, err := cached.ReverseGeocode(context.Background(), -6.20001, 106.80002)
	require.NoError(t, err)
	_, err = cached.ReverseGeocode(context.Background(), -6.20003, 106.80001)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_ErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.ReverseGeocode(context.Background(), -6.2, 106.8)
	require.Error(t, err)
	_, err = cached.ReverseGeocode(context.Background(), -6.2, 106.8)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultsNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.ReverseGeocode(context.Background(), 0.1, 0.1)
	require.NoError(t, err)
	_, err = cached.ReverseGeocode(context.Background(), 0.1, 0.1)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingGeocoder{result: domain.PlaceResult{DisplayName: "somewhere"}}
	cached := NewCachedGeocoder(inner, 2, testMetrics())

	ctx := context.Background()
	_, _ = cached.ReverseGeocode(ctx, 1, 1)
	_, _ = cached.ReverseGeocode(ctx, 2, 2)
	_, _ = cached.ReverseGeocode(ctx, 3, 3) // evicts (1,1)
	assert.Equal(t, 3, inner.calls)

	_, _ = cached.ReverseGeocode(ctx, 3, 3) // hit
	assert.Equal(t, 3, inner.calls)

	_, _ = cached.ReverseGeocode(ctx, 1, 1) // miss again after eviction
	assert.Equal(t, 4, inner.calls)
}
