package migrator

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"gocatalog_api/internal/catalog/models"
	"gocatalog_api/internal/catalog/storage"
)

// fakeCatalog is an in-memory Store with the same visibility semantics as the
// Postgres one: plain reads see committed rows only, FileTx writes become
// visible at Commit, and Record scopes writes to a savepoint.
type fakeCatalog struct {
	brands   map[string]*models.Brand
	sources  map[string]*models.Source
	products []*models.Product
	listings []*models.Listing
	prices   []*models.Price
	rawSpecs []*models.RawSpec
	stdSpecs []*models.StdSpec
	images   []*models.Image
	nextID   int64

	// stdSpecFailures makes the next N std spec writes fail, to drive a
	// record into its savepoint rollback mid fan-out.
	stdSpecFailures int
}

var _ storage.Store = (*fakeCatalog)(nil)

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		brands:  make(map[string]*models.Brand),
		sources: make(map[string]*models.Source),
	}
}

func (c *fakeCatalog) id() int64 {
	c.nextID++
	return c.nextID
}

func (c *fakeCatalog) BrandByName(name string) (*models.Brand, error) {
	return c.brands[name], nil
}

func (c *fakeCatalog) InsertBrand(name string) (*models.Brand, error) {
	b := &models.Brand{ID: c.id(), Name: name}
	c.brands[name] = b
	return b, nil
}

func (c *fakeCatalog) SourceByDomain(domain string) (*models.Source, error) {
	return c.sources[domain], nil
}

func (c *fakeCatalog) InsertSource(importer, domain string) (*models.Source, error) {
	s := &models.Source{ID: c.id(), Importer: importer, Domain: domain}
	c.sources[domain] = s
	return s, nil
}

func (c *fakeCatalog) ProductBySlug(slug string) (*models.Product, error) {
	for _, p := range c.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (c *fakeCatalog) ProductByNaturalKey(brandID sql.NullInt64, model string, year sql.NullInt64) (*models.Product, error) {
	for _, p := range c.products {
		if nullInt64Equal(p.BrandID, brandID) && p.Model == model && nullInt64Equal(p.Year, year) {
			return p, nil
		}
	}
	return nil, nil
}

func (c *fakeCatalog) SlugExists(slug string) (bool, error) {
	p, _ := c.ProductBySlug(slug)
	return p != nil, nil
}

func (c *fakeCatalog) ListingByURL(sourceID int64, productURL string) (*models.Listing, error) {
	for _, l := range c.listings {
		if l.SourceID == sourceID && l.ProductURL == productURL {
			return l, nil
		}
	}
	return nil, nil
}

func (c *fakeCatalog) ListingHasPrice(listingID int64) (bool, error) {
	for _, p := range c.prices {
		if p.ListingID == listingID {
			return true, nil
		}
	}
	return false, nil
}

func (c *fakeCatalog) ImageMaxPosition(productID int64) (int, error) {
	max := -1
	for _, im := range c.images {
		if im.ProductID == productID && im.Position > max {
			max = im.Position
		}
	}
	return max, nil
}

func (c *fakeCatalog) ImageHasMain(productID int64) (bool, error) {
	for _, im := range c.images {
		if im.ProductID == productID && im.IsMain {
			return true, nil
		}
	}
	return false, nil
}

func (c *fakeCatalog) BeginFile(_ context.Context) (storage.FileTx, error) {
	return &fakeTx{c: c}, nil
}

func nullInt64Equal(a, b sql.NullInt64) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Int64 == b.Int64
}

type fakeTx struct {
	c    *fakeCatalog
	done bool

	products []*models.Product
	listings []*models.Listing
	prices   []*models.Price
	rawSpecs []*models.RawSpec
	stdSpecs []*models.StdSpec
	images   []*models.Image
}

var _ storage.FileTx = (*fakeTx)(nil)

func (t *fakeTx) InsertProduct(p *models.Product) error {
	for _, set := range [][]*models.Product{t.c.products, t.products} {
		for _, other := range set {
			if other.Slug == p.Slug {
				return &pq.Error{Code: "23505", Constraint: "products_slug_key"}
			}
		}
	}
	p.ID = t.c.id()
	t.products = append(t.products, p)
	return nil
}

func (t *fakeTx) InsertListing(l *models.Listing) error {
	for _, set := range [][]*models.Listing{t.c.listings, t.listings} {
		for _, other := range set {
			if other.SourceID == l.SourceID && other.ProductURL == l.ProductURL {
				return &pq.Error{Code: "23505", Constraint: "unique_source_product_url"}
			}
		}
	}
	l.ID = t.c.id()
	t.listings = append(t.listings, l)
	return nil
}

func (t *fakeTx) InsertPrice(p *models.Price) error {
	p.ID = t.c.id()
	t.prices = append(t.prices, p)
	return nil
}

func (t *fakeTx) InsertRawSpec(s *models.RawSpec) error {
	s.ID = t.c.id()
	t.rawSpecs = append(t.rawSpecs, s)
	return nil
}

func (t *fakeTx) UpsertStdSpec(s *models.StdSpec) (bool, error) {
	if t.c.stdSpecFailures > 0 {
		t.c.stdSpecFailures--
		return false, errors.New("std spec write refused")
	}
	for _, set := range [][]*models.StdSpec{t.c.stdSpecs, t.stdSpecs} {
		for _, other := range set {
			if other.ProductID == s.ProductID && other.SpecName == s.SpecName {
				other.Value = s.Value
				return false, nil
			}
		}
	}
	s.ID = t.c.id()
	t.stdSpecs = append(t.stdSpecs, s)
	return true, nil
}

func (t *fakeTx) InsertImage(im *models.Image) (bool, error) {
	for _, set := range [][]*models.Image{t.c.images, t.images} {
		for _, other := range set {
			if other.ProductID == im.ProductID && other.URL == im.URL {
				return false, nil
			}
		}
	}
	im.ID = t.c.id()
	t.images = append(t.images, im)
	return true, nil
}

// Record emulates the savepoint: on error every write fn made is discarded.
func (t *fakeTx) Record(fn func() error) error {
	nProducts, nListings, nPrices := len(t.products), len(t.listings), len(t.prices)
	nRawSpecs, nStdSpecs, nImages := len(t.rawSpecs), len(t.stdSpecs), len(t.images)

	if err := fn(); err != nil {
		t.products = t.products[:nProducts]
		t.listings = t.listings[:nListings]
		t.prices = t.prices[:nPrices]
		t.rawSpecs = t.rawSpecs[:nRawSpecs]
		t.stdSpecs = t.stdSpecs[:nStdSpecs]
		t.images = t.images[:nImages]
		return err
	}
	return nil
}

func (t *fakeTx) Commit() error {
	t.c.products = append(t.c.products, t.products...)
	t.c.listings = append(t.c.listings, t.listings...)
	t.c.prices = append(t.c.prices, t.prices...)
	t.c.rawSpecs = append(t.c.rawSpecs, t.rawSpecs...)
	t.c.stdSpecs = append(t.c.stdSpecs, t.stdSpecs...)
	t.c.images = append(t.c.images, t.images...)
	t.done = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.done {
		t.products, t.listings, t.prices = nil, nil, nil
		t.rawSpecs, t.stdSpecs, t.images = nil, nil, nil
	}
	return nil
}
