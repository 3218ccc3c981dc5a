// Package storage wires the catalog repositories into the transaction
// boundary the migration engine needs: a committed read view on the plain
// connection, one transaction per source file, one savepoint per record.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gocatalog_api/internal/catalog/models"
	"gocatalog_api/internal/catalog/storage/repositories"
)

// ErrTxBroken marks a savepoint management failure. Once a file transaction
// is broken the whole file must be abandoned.
var ErrTxBroken = errors.New("file transaction broken")

// Store is the committed view of the catalog plus the entry point for
// per-file transactions. Reads here never see rows pending in an open
// FileTx, which keeps resolver decisions stable across a batch.
type Store interface {
	BrandByName(name string) (*models.Brand, error)
	InsertBrand(name string) (*models.Brand, error)
	SourceByDomain(domain string) (*models.Source, error)
	InsertSource(importer, domain string) (*models.Source, error)

	ProductBySlug(slug string) (*models.Product, error)
	ProductByNaturalKey(brandID sql.NullInt64, model string, year sql.NullInt64) (*models.Product, error)
	SlugExists(slug string) (bool, error)
	ListingByURL(sourceID int64, productURL string) (*models.Listing, error)
	ListingHasPrice(listingID int64) (bool, error)
	ImageMaxPosition(productID int64) (int, error)
	ImageHasMain(productID int64) (bool, error)

	BeginFile(ctx context.Context) (FileTx, error)
}

// FileTx carries every write of one source file. Record scopes a single
// record's writes to a savepoint so a failure rolls back just that record.
type FileTx interface {
	InsertProduct(p *models.Product) error
	InsertListing(l *models.Listing) error
	InsertPrice(p *models.Price) error
	InsertRawSpec(s *models.RawSpec) error
	UpsertStdSpec(s *models.StdSpec) (bool, error)
	InsertImage(im *models.Image) (bool, error)

	Record(fn func() error) error
	Commit() error
	Rollback() error
}

type PgStore struct {
	db       *sql.DB
	brands   *repositories.BrandRepository
	sources  *repositories.SourceRepository
	products *repositories.ProductRepository
	listings *repositories.ListingRepository
	prices   *repositories.PriceRepository
	images   *repositories.ImageRepository
}

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{
		db:       db,
		brands:   repositories.NewBrandRepository(db),
		sources:  repositories.NewSourceRepository(db),
		products: repositories.NewProductRepository(db),
		listings: repositories.NewListingRepository(db),
		prices:   repositories.NewPriceRepository(db),
		images:   repositories.NewImageRepository(db),
	}
}

func (s *PgStore) BrandByName(name string) (*models.Brand, error) {
	return s.brands.GetByName(name)
}

// InsertBrand writes on the plain connection, outside any file transaction,
// so a brand row survives even when the enclosing file later fails. Retrying
// a failed batch then reuses the same brand identity.
func (s *PgStore) InsertBrand(name string) (*models.Brand, error) {
	return s.brands.Insert(name)
}

func (s *PgStore) SourceByDomain(domain string) (*models.Source, error) {
	return s.sources.GetByDomain(domain)
}

func (s *PgStore) InsertSource(importer, domain string) (*models.Source, error) {
	return s.sources.Insert(importer, domain)
}

func (s *PgStore) ProductBySlug(slug string) (*models.Product, error) {
	return s.products.GetBySlug(slug)
}

func (s *PgStore) ProductByNaturalKey(brandID sql.NullInt64, model string, year sql.NullInt64) (*models.Product, error) {
	return s.products.GetByNaturalKey(brandID, model, year)
}

func (s *PgStore) SlugExists(slug string) (bool, error) {
	return s.products.SlugExists(slug)
}

func (s *PgStore) ListingByURL(sourceID int64, productURL string) (*models.Listing, error) {
	return s.listings.GetByURL(sourceID, productURL)
}

func (s *PgStore) ListingHasPrice(listingID int64) (bool, error) {
	return s.prices.ExistsForListing(listingID)
}

func (s *PgStore) ImageMaxPosition(productID int64) (int, error) {
	return s.images.MaxPosition(productID)
}

func (s *PgStore) ImageHasMain(productID int64) (bool, error) {
	return s.images.HasMain(productID)
}

func (s *PgStore) BeginFile(ctx context.Context) (FileTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin file transaction: %w", err)
	}
	return newPgFileTx(tx), nil
}

type PgFileTx struct {
	tx       *sql.Tx
	products *repositories.ProductRepository
	listings *repositories.ListingRepository
	prices   *repositories.PriceRepository
	specs    *repositories.SpecRepository
	images   *repositories.ImageRepository
	seq      int
}

func newPgFileTx(tx *sql.Tx) *PgFileTx {
	return &PgFileTx{
		tx:       tx,
		products: repositories.NewProductRepository(tx),
		listings: repositories.NewListingRepository(tx),
		prices:   repositories.NewPriceRepository(tx),
		specs:    repositories.NewSpecRepository(tx),
		images:   repositories.NewImageRepository(tx),
	}
}

func (t *PgFileTx) InsertProduct(p *models.Product) error { return t.products.Insert(p) }
func (t *PgFileTx) InsertListing(l *models.Listing) error { return t.listings.Insert(l) }
func (t *PgFileTx) InsertPrice(p *models.Price) error     { return t.prices.Insert(p) }
func (t *PgFileTx) InsertRawSpec(s *models.RawSpec) error { return t.specs.InsertRaw(s) }

func (t *PgFileTx) UpsertStdSpec(s *models.StdSpec) (bool, error) { return t.specs.UpsertStd(s) }
func (t *PgFileTx) InsertImage(im *models.Image) (bool, error)    { return t.images.Insert(im) }

// Record runs fn inside a savepoint. fn's error is returned as-is after the
// savepoint is rolled back; savepoint management failures wrap ErrTxBroken.
func (t *PgFileTx) Record(fn func() error) error {
	t.seq++
	name := fmt.Sprintf("record_%d", t.seq)

	if _, err := t.tx.Exec("SAVEPOINT " + name); err != nil {
		return fmt.Errorf("%w: savepoint: %v", ErrTxBroken, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := t.tx.Exec("ROLLBACK TO SAVEPOINT " + name); rbErr != nil {
			return fmt.Errorf("%w: rollback to savepoint after %v: %v", ErrTxBroken, err, rbErr)
		}
		return err
	}
	if _, err := t.tx.Exec("RELEASE SAVEPOINT " + name); err != nil {
		return fmt.Errorf("%w: release savepoint: %v", ErrTxBroken, err)
	}
	return nil
}

func (t *PgFileTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file transaction: %w", err)
	}
	return nil
}

func (t *PgFileTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back file transaction: %w", err)
	}
	return nil
}
