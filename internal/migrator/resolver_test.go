package migrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityCacheBrand(t *testing.T) {
	c := newFakeCatalog()
	cache := NewEntityCache(c)

	brand, created, err := cache.Brand("  Giant ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Giant", brand.Name)

	again, created, err := cache.Brand("Giant")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, brand.ID, again.ID)
	assert.Len(t, c.brands, 1)
}

func TestEntityCacheBrandReusesCommittedRow(t *testing.T) {
	c := newFakeCatalog()
	existing, err := c.InsertBrand("Merida")
	require.NoError(t, err)

	brand, created, err := NewEntityCache(c).Brand("Merida")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, brand.ID)
}

func TestEntityCacheSource(t *testing.T) {
	c := newFakeCatalog()
	cache := NewEntityCache(c)

	src, created, err := cache.Source("ofanaim", "www.ofanaim.co.il")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ofanaim", src.Importer)

	again, created, err := cache.Source("something-else", "www.ofanaim.co.il")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, src.ID, again.ID)
	assert.Len(t, c.sources, 1)
}
