package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"gocatalog_api/internal/catalog/models"
)

type ListingRepository struct {
	db Queryer
}

func NewListingRepository(db Queryer) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) GetByURL(sourceID int64, productURL string) (*models.Listing, error) {
	query := `SELECT listing_id, product_id, source_id, product_url, created_at
		FROM catalog.listings WHERE source_id = $1 AND product_url = $2`

	var l models.Listing
	err := r.db.QueryRow(query, sourceID, productURL).Scan(
		&l.ID, &l.ProductID, &l.SourceID, &l.ProductURL, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing by url: %w", err)
	}

	return &l, nil
}

func (r *ListingRepository) Insert(l *models.Listing) error {
	query := `INSERT INTO catalog.listings (product_id, source_id, product_url)
		VALUES ($1, $2, $3) RETURNING listing_id, created_at`

	err := r.db.QueryRow(query, l.ProductID, l.SourceID, l.ProductURL).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert listing %q: %w", l.ProductURL, err)
	}
	return nil
}
