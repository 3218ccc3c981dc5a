package migrator

import (
	"strings"

	"gocatalog_api/internal/catalog/models"
	"gocatalog_api/internal/catalog/storage"
)

// EntityCache gives Brand and Source get-or-create semantics with in-process
// caching, scoped to one migration run. Inserts go through the committed
// connection on purpose: a brand created for a record that later fails keeps
// its identity, so retrying the batch never mints a second row.
type EntityCache struct {
	store   storage.Store
	brands  map[string]*models.Brand
	sources map[string]*models.Source
}

func NewEntityCache(store storage.Store) *EntityCache {
	return &EntityCache{
		store:   store,
		brands:  make(map[string]*models.Brand),
		sources: make(map[string]*models.Source),
	}
}

// Brand resolves a brand by trimmed name, creating it on first encounter.
// The second return reports whether a row was created.
func (c *EntityCache) Brand(name string) (*models.Brand, bool, error) {
	key := strings.TrimSpace(name)
	if brand, ok := c.brands[key]; ok {
		return brand, false, nil
	}

	brand, err := c.store.BrandByName(key)
	if err != nil {
		return nil, false, &PrereqError{Entity: "brand", Name: key, Err: err}
	}
	created := false
	if brand == nil {
		brand, err = c.store.InsertBrand(key)
		if err != nil {
			return nil, false, &PrereqError{Entity: "brand", Name: key, Err: err}
		}
		created = true
	}

	c.brands[key] = brand
	return brand, created, nil
}

// Source resolves a source by domain, creating it with the importer label on
// first encounter.
func (c *EntityCache) Source(importer, domain string) (*models.Source, bool, error) {
	key := strings.TrimSpace(domain)
	if src, ok := c.sources[key]; ok {
		return src, false, nil
	}

	src, err := c.store.SourceByDomain(key)
	if err != nil {
		return nil, false, &PrereqError{Entity: "source", Name: key, Err: err}
	}
	created := false
	if src == nil {
		src, err = c.store.InsertSource(strings.TrimSpace(importer), key)
		if err != nil {
			return nil, false, &PrereqError{Entity: "source", Name: key, Err: err}
		}
		created = true
	}

	c.sources[key] = src
	return src, created, nil
}
