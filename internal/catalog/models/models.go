package models

import (
	"database/sql"
	"time"
)

// Entities below map 1:1 to the catalog schema tables.

type Brand struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

type Source struct {
	ID        int64
	Importer  string
	Domain    string
	CreatedAt time.Time
}

// Product is the catalog item itself, unique per (brand, model, year) and
// per slug. Year may be absent when no source supplied a usable one.
type Product struct {
	ID           int64
	BrandID      sql.NullInt64
	Model        string
	Year         sql.NullInt64
	Category     sql.NullString
	SubCategory  sql.NullString
	Style        sql.NullString
	Slug         string
	MainImageURL sql.NullString
	Description  sql.NullString
	CreatedAt    time.Time
}

// Listing is one product's appearance on one source site.
type Listing struct {
	ID         int64
	ProductID  int64
	SourceID   int64
	ProductURL string
	CreatedAt  time.Time
}

type Price struct {
	ID              int64
	ListingID       int64
	OriginalPrice   sql.NullFloat64
	DiscountedPrice sql.NullFloat64
	Currency        string
	ObservedAt      time.Time
}

// RawSpec keeps the source attribute verbatim, original key included.
type RawSpec struct {
	ID        int64
	ListingID int64
	RawKey    string
	RawValue  string
}

// StdSpec is the canonicalized copy of a spec attribute, used for filtering.
type StdSpec struct {
	ID        int64
	ProductID int64
	SpecName  string
	Value     string
}

type Image struct {
	ID        int64
	ProductID int64
	SourceID  int64
	URL       string
	IsMain    bool
	Position  int
}
