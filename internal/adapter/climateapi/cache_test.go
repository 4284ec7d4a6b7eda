package climateapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klimakart/choropleth-styling-service/internal/domain"
)

// --- mock for cache tests ---

type countingProvider struct {
	featureCalls  int
	metadataCalls int
	features      domain.FeatureCollection
	metadata      domain.IndexMetadata
}

func (m *countingProvider) Municipalities(_ context.Context, _, _, _ string) (domain.FeatureCollection, error) {
	m.featureCalls++
	return m.features, nil
}

func (m *countingProvider) IndexMetadata(_ context.Context, _ string) (domain.IndexMetadata, error) {
	m.metadataCalls++
	return m.metadata, nil
}

func nonEmptyFeatures() domain.FeatureCollection {
	return domain.FeatureCollection{Features: []domain.Feature{
		{ID: "f-1", MunicipalityCode: "GM0001", Value: floatPtr(1.5)},
	}}
}

// --- CachedProvider tests ---

func TestCachedProvider_FeatureCacheHit(t *testing.T) {
	inner := &countingProvider{features: nonEmptyFeatures()}
	cached := NewCachedProvider(inner, 10, testMetrics())

	fc1, err := cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	require.NoError(t, err)
	require.Len(t, fc1.Features, 1)

	fc2, err := cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	require.NoError(t, err)
	require.Len(t, fc2.Features, 1)

	assert.Equal(t, 1, inner.featureCalls, "should only call inner once")
}

func TestCachedProvider_DifferentSelectionsMiss(t *testing.T) {
	inner := &countingProvider{features: nonEmptyFeatures()}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp45", "2050")
	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp85", "2085")

	assert.Equal(t, 3, inner.featureCalls)
}

func TestCachedProvider_EmptyLayerNotCached(t *testing.T) {
	inner := &countingProvider{} // zero features
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")

	assert.Equal(t, 2, inner.featureCalls, "empty layers should be retried")
}

func TestCachedProvider_MetadataCacheHit(t *testing.T) {
	inner := &countingProvider{metadata: domain.IndexMetadata{Code: "heat_days", Name: "Hot days"}}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, err := cached.IndexMetadata(context.Background(), "heat_days")
	require.NoError(t, err)
	_, err = cached.IndexMetadata(context.Background(), "heat_days")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.metadataCalls)
}

func TestCachedProvider_UnknownMetadataNotCached(t *testing.T) {
	inner := &countingProvider{} // zero-value metadata, Code == ""
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, _ = cached.IndexMetadata(context.Background(), "no_such_index")
	_, _ = cached.IndexMetadata(context.Background(), "no_such_index")

	assert.Equal(t, 2, inner.metadataCalls)
}

func TestCachedProvider_InvalidateExactSlice(t *testing.T) {
	inner := &countingProvider{features: nonEmptyFeatures(), metadata: domain.IndexMetadata{Code: "heat_days"}}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp45", "2050")
	_, _ = cached.IndexMetadata(context.Background(), "heat_days")

	removed := cached.Invalidate(domain.RefreshEvent{
		IndexCode: "heat_days", Scenario: "rcp85", Period: "2050", PublishedAt: time.Now(),
	})
	assert.Equal(t, 2, removed, "one feature slice plus the metadata row")

	// The named slice refetches, the untouched one stays cached.
	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp45", "2050")
	assert.Equal(t, 3, inner.featureCalls)
}

func TestCachedProvider_InvalidateWholeIndex(t *testing.T) {
	inner := &countingProvider{features: nonEmptyFeatures(), metadata: domain.IndexMetadata{Code: "heat_days"}}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp45", "2085")
	_, _ = cached.Municipalities(context.Background(), "frost_days", "rcp85", "2050")

	removed := cached.Invalidate(domain.RefreshEvent{IndexCode: "heat_days"})
	assert.Equal(t, 2, removed)

	_, _ = cached.Municipalities(context.Background(), "frost_days", "rcp85", "2050")
	assert.Equal(t, 3, inner.featureCalls, "other indices stay cached")
}

func TestCachedProvider_InvalidateAllOnEmptyEvent(t *testing.T) {
	inner := &countingProvider{features: nonEmptyFeatures(), metadata: domain.IndexMetadata{Code: "heat_days"}}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	_, _ = cached.IndexMetadata(context.Background(), "heat_days")

	removed := cached.Invalidate(domain.RefreshEvent{})
	assert.Equal(t, 2, removed)

	_, _ = cached.Municipalities(context.Background(), "heat_days", "rcp85", "2050")
	_, _ = cached.IndexMetadata(context.Background(), "heat_days")
	assert.Equal(t, 2, inner.featureCalls)
	assert.Equal(t, 2, inner.metadataCalls)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache[string](3)

	c.put("a", "A")
	c.put("b", "B")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", v)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")

	// Access "a" to promote it
	c.get("a")

	c.put("c", "C")

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A1")
	c.put("a", "A2")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", v)
}

func TestLRUCache_RemovePrefix(t *testing.T) {
	c := newLRUCache[string](10)

	c.put("heat_days|rcp85|2050", "x")
	c.put("heat_days|rcp45|2085", "y")
	c.put("frost_days|rcp85|2050", "z")

	assert.Equal(t, 2, c.removePrefix("heat_days|"))

	_, ok := c.get("frost_days|rcp85|2050")
	assert.True(t, ok)

	// The list must stay consistent after mid-list removals.
	c.put("heat_days|rcp85|2050", "x2")
	v, ok := c.get("heat_days|rcp85|2050")
	assert.True(t, ok)
	assert.Equal(t, "x2", v)
}
