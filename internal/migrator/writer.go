package migrator

import (
	"database/sql"
	"fmt"
	"sort"

	"gocatalog_api/internal/catalog/models"
	"gocatalog_api/internal/catalog/storage"
	"gocatalog_api/internal/migrator/fields"
	"gocatalog_api/internal/migrator/normalize"
	"gocatalog_api/internal/migrator/slug"
)

// batchState tracks rows created earlier in the current file that committed
// reads cannot see yet. Entries are registered only for records whose
// savepoint succeeded.
type batchState struct {
	listings map[string]*batchListing
}

type batchListing struct {
	listing *models.Listing
	priced  bool
}

func newBatchState() *batchState {
	return &batchState{listings: make(map[string]*batchListing)}
}

func listingKey(sourceID int64, url string) string {
	return fmt.Sprintf("%d\x00%s", sourceID, url)
}

// migrateRecord runs one record through validation, product resolution and
// the relational fan-out. All writes happen inside one savepoint on tx.
func (m *Migrator) migrateRecord(tx storage.FileTx, batch *batchState, src *models.Source, rec *fields.Record) RecordResult {
	model := normalize.CleanText(rec.Get("model"))
	brandName := normalize.CleanText(rec.Get("brand"))
	year, hasYear := normalize.ParseYear(rec.Get("year"))

	if model == "" {
		return invalidResult("", &ValidationError{Field: "model", Reason: "missing"})
	}
	if len(model) > maxModelLength {
		return invalidResult("", &ValidationError{Field: "model", Reason: "too long"})
	}

	base := slug.Generate(brandName, model, year)
	if base == "" {
		return invalidResult("", &ValidationError{Field: "slug", Reason: "empty after normalization"})
	}
	if len(base) > maxSlugLength {
		return invalidResult(base, &ValidationError{Field: "slug", Reason: "too long"})
	}

	var brandID sql.NullInt64
	var brandAdded bool
	if brandName != "" {
		brand, created, err := m.cache.Brand(brandName)
		if err != nil {
			return RecordResult{Outcome: OutcomeFailed, Slug: base, Reason: "brand resolution failed", Err: err}
		}
		brandID = sql.NullInt64{Int64: brand.ID, Valid: true}
		brandAdded = created
	}

	yearVal := sql.NullInt64{}
	if hasYear {
		yearVal = sql.NullInt64{Int64: int64(year), Valid: true}
	}

	// Slug match takes priority over the natural key: the slug is the
	// externally visible identifier and must never silently change meaning.
	existing, err := m.store.ProductBySlug(base)
	if err != nil {
		return RecordResult{Outcome: OutcomeFailed, Slug: base, Reason: "product lookup failed", Err: err, BrandAdded: brandAdded}
	}
	if existing == nil {
		existing, err = m.store.ProductByNaturalKey(brandID, model, yearVal)
		if err != nil {
			return RecordResult{Outcome: OutcomeFailed, Slug: base, Reason: "product lookup failed", Err: err, BrandAdded: brandAdded}
		}
	}

	var res RecordResult
	if existing != nil {
		res = m.attachToExisting(tx, batch, src, rec, existing)
	} else {
		res = m.createProduct(tx, batch, src, rec, base, brandID, model, yearVal)
	}
	res.BrandAdded = brandAdded
	return res
}

// createProduct inserts a new product with its listing, price, specs and
// images. A failure rolls back just this record.
func (m *Migrator) createProduct(tx storage.FileTx, batch *batchState, src *models.Source, rec *fields.Record,
	base string, brandID sql.NullInt64, model string, year sql.NullInt64) RecordResult {

	uniqueSlug, err := slug.Unique(base, m.batchSlugs, m.store.SlugExists)
	if err != nil {
		return RecordResult{Outcome: OutcomeFailed, Slug: base, Reason: "slug check failed", Err: err}
	}

	product := &models.Product{
		BrandID:      brandID,
		Model:        model,
		Year:         year,
		Category:     nullString(normalize.CleanText(rec.Get("category"))),
		SubCategory:  nullString(normalize.CleanText(rec.Get("sub_category"))),
		Style:        nullString(normalize.CleanText(rec.Get("style"))),
		Slug:         uniqueSlug,
		MainImageURL: nullString(rec.MainImage),
		Description:  nullString(normalize.CleanText(rec.Get("description"))),
	}

	// Batch bookkeeping is applied only after the savepoint succeeds, so a
	// rolled-back record leaves no phantom listing or priced flag behind.
	res := RecordResult{Outcome: OutcomeAdded, Slug: uniqueSlug}
	var newListing *models.Listing
	var pricedPrior *batchListing
	pricedNew := false

	err = tx.Record(func() error {
		if err := tx.InsertProduct(product); err != nil {
			return err
		}

		if url := rec.Source.URL; url != "" {
			prior := batch.listings[listingKey(src.ID, url)]

			var listing *models.Listing
			if prior != nil {
				// Same product URL seen earlier in this batch: reuse that
				// listing instead of duplicating it.
				listing = prior.listing
			} else {
				listing = &models.Listing{ProductID: product.ID, SourceID: src.ID, ProductURL: url}
				if err := tx.InsertListing(listing); err != nil {
					return err
				}
				newListing = listing
				res.ListingAdded = true
			}

			if prior == nil || !prior.priced {
				if price := m.priceFromRecord(rec, listing.ID); price != nil {
					if err := tx.InsertPrice(price); err != nil {
						return err
					}
					if prior != nil {
						pricedPrior = prior
					} else {
						pricedNew = true
					}
					res.PriceAdded = true
				}
			}

			n, err := writeRawSpecs(tx, listing.ID, rec)
			if err != nil {
				return err
			}
			res.RawSpecsAdded = n
		}

		n, err := writeStdSpecs(tx, product.ID, rec)
		if err != nil {
			return err
		}
		res.StdSpecsAdded = n

		n, err = writeImages(tx, product.ID, src.ID, rec, 0, false)
		if err != nil {
			return err
		}
		res.ImagesAdded = n
		return nil
	})
	if err != nil {
		// The slug reservation must not outlive the rolled-back savepoint.
		delete(m.batchSlugs, uniqueSlug)
		return failedResult(uniqueSlug, err)
	}

	if newListing != nil {
		batch.listings[listingKey(src.ID, newListing.ProductURL)] = &batchListing{listing: newListing, priced: pricedNew}
	}
	if pricedPrior != nil {
		pricedPrior.priced = true
	}
	return res
}

// attachToExisting handles a record that matched an existing product. The
// product itself is never re-created; a missing listing is attached, and a
// priceless listing gets a price topped up from the current record.
func (m *Migrator) attachToExisting(tx storage.FileTx, batch *batchState, src *models.Source, rec *fields.Record, product *models.Product) RecordResult {
	res := RecordResult{Outcome: OutcomeDuplicate, Slug: product.Slug, Reason: "product already in catalog"}

	url := rec.Source.URL
	if url == "" {
		return res
	}
	key := listingKey(src.ID, url)

	if prior, ok := batch.listings[key]; ok {
		if !prior.priced {
			if price := m.priceFromRecord(rec, prior.listing.ID); price != nil {
				if err := tx.Record(func() error { return tx.InsertPrice(price) }); err != nil {
					return failedResult(product.Slug, err)
				}
				prior.priced = true
				res.PriceAdded = true
			}
		}
		return res
	}

	listing, err := m.store.ListingByURL(src.ID, url)
	if err != nil {
		return RecordResult{Outcome: OutcomeFailed, Slug: product.Slug, Reason: "listing lookup failed", Err: err}
	}

	if listing != nil {
		if listing.ProductID != product.ID {
			// URL already belongs to a listing of another product; nothing
			// safe to add here.
			return res
		}
		hasPrice, err := m.store.ListingHasPrice(listing.ID)
		if err != nil {
			return RecordResult{Outcome: OutcomeFailed, Slug: product.Slug, Reason: "price lookup failed", Err: err}
		}
		if !hasPrice {
			if price := m.priceFromRecord(rec, listing.ID); price != nil {
				if err := tx.Record(func() error { return tx.InsertPrice(price) }); err != nil {
					return failedResult(product.Slug, err)
				}
				res.PriceAdded = true
			}
		}
		return res
	}

	// Cross-source appearance: the product exists but this source has no
	// listing for it yet.
	maxPos, err := m.store.ImageMaxPosition(product.ID)
	if err != nil {
		return RecordResult{Outcome: OutcomeFailed, Slug: product.Slug, Reason: "image lookup failed", Err: err}
	}
	hasMain, err := m.store.ImageHasMain(product.ID)
	if err != nil {
		return RecordResult{Outcome: OutcomeFailed, Slug: product.Slug, Reason: "image lookup failed", Err: err}
	}

	newListing := &models.Listing{ProductID: product.ID, SourceID: src.ID, ProductURL: url}
	priced := false
	err = tx.Record(func() error {
		if err := tx.InsertListing(newListing); err != nil {
			return err
		}

		if price := m.priceFromRecord(rec, newListing.ID); price != nil {
			if err := tx.InsertPrice(price); err != nil {
				return err
			}
			priced = true
			res.PriceAdded = true
		}

		n, err := writeRawSpecs(tx, newListing.ID, rec)
		if err != nil {
			return err
		}
		res.RawSpecsAdded = n

		n, err = writeStdSpecs(tx, product.ID, rec)
		if err != nil {
			return err
		}
		res.StdSpecsAdded = n

		n, err = writeImages(tx, product.ID, src.ID, rec, maxPos+1, hasMain)
		if err != nil {
			return err
		}
		res.ImagesAdded = n
		return nil
	})
	if err != nil {
		return failedResult(product.Slug, err)
	}

	batch.listings[key] = &batchListing{listing: newListing, priced: priced}
	res.ListingAdded = true
	return res
}

// priceFromRecord builds a price row from the record's price fields, nil
// when neither amount parsed. Absent numeric values are never fabricated.
func (m *Migrator) priceFromRecord(rec *fields.Record, listingID int64) *models.Price {
	original, okOriginal := normalize.ParsePrice(rec.Get("price"))
	discounted, okDiscounted := normalize.ParsePrice(rec.Get("discounted_price"))
	if !okOriginal && !okDiscounted {
		return nil
	}

	currency := rec.Get("currency")
	if currency == "" {
		currency = m.currency
	}

	price := &models.Price{ListingID: listingID, Currency: currency}
	if okOriginal {
		price.OriginalPrice = sql.NullFloat64{Float64: original, Valid: true}
	}
	if okDiscounted {
		price.DiscountedPrice = sql.NullFloat64{Float64: discounted, Valid: true}
	}
	return price
}

func writeRawSpecs(tx storage.FileTx, listingID int64, rec *fields.Record) (int, error) {
	for _, rf := range rec.RawSpecs {
		spec := &models.RawSpec{ListingID: listingID, RawKey: rf.Key, RawValue: rf.Value}
		if err := tx.InsertRawSpec(spec); err != nil {
			return 0, err
		}
	}
	return len(rec.RawSpecs), nil
}

func writeStdSpecs(tx storage.FileTx, productID int64, rec *fields.Record) (int, error) {
	names := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		if !fields.IsStructural(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	added := 0
	for _, name := range names {
		value := normalize.CleanText(rec.Fields[name])
		if value == "" {
			continue
		}
		inserted, err := tx.UpsertStdSpec(&models.StdSpec{ProductID: productID, SpecName: name, Value: value})
		if err != nil {
			return added, err
		}
		if inserted {
			added++
		}
	}
	return added, nil
}

// writeImages persists the record's gallery for a product, deduplicating by
// URL and assigning ascending positions from startPos. The first image is
// flagged main only when no explicit main image URL was supplied; mainTaken
// suppresses the flag entirely when the product already has a main image.
func writeImages(tx storage.FileTx, productID, sourceID int64, rec *fields.Record, startPos int, mainTaken bool) (int, error) {
	urls := make([]string, 0, len(rec.Gallery)+1)
	seen := make(map[string]struct{})
	if rec.MainImage != "" {
		urls = append(urls, rec.MainImage)
		seen[rec.MainImage] = struct{}{}
	}
	for _, url := range rec.Gallery {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}

	added := 0
	pos := startPos
	for i, url := range urls {
		isMain := false
		if !mainTaken && i == 0 {
			// With an explicit main image URL it sits first in urls; without
			// one the first gallery image takes the flag.
			isMain = true
		}
		inserted, err := tx.InsertImage(&models.Image{
			ProductID: productID, SourceID: sourceID, URL: url, IsMain: isMain, Position: pos,
		})
		if err != nil {
			return added, err
		}
		if inserted {
			added++
			pos++
		}
	}
	return added, nil
}

func invalidResult(slugStr string, verr *ValidationError) RecordResult {
	return RecordResult{Outcome: OutcomeInvalid, Slug: slugStr, Reason: verr.Error()}
}

func failedResult(slugStr string, err error) RecordResult {
	reason := "record writes rolled back"
	if isUniqueViolation(err) {
		reason = "unique constraint collision"
	}
	return RecordResult{Outcome: OutcomeFailed, Slug: slugStr, Reason: reason, Err: err}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
