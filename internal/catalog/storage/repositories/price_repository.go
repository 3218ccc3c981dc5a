package repositories

import (
	"fmt"

	"gocatalog_api/internal/catalog/models"
)

type PriceRepository struct {
	db Queryer
}

func NewPriceRepository(db Queryer) *PriceRepository {
	return &PriceRepository{db: db}
}

func (r *PriceRepository) Insert(p *models.Price) error {
	query := `INSERT INTO catalog.prices (listing_id, original_price, discounted_price, currency)
		VALUES ($1, $2, $3, $4) RETURNING price_id, observed_at`

	err := r.db.QueryRow(query, p.ListingID, p.OriginalPrice, p.DiscountedPrice, p.Currency).
		Scan(&p.ID, &p.ObservedAt)
	if err != nil {
		return fmt.Errorf("failed to insert price for listing %d: %w", p.ListingID, err)
	}
	return nil
}

func (r *PriceRepository) ExistsForListing(listingID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM catalog.prices WHERE listing_id = $1)`, listingID).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check prices for listing %d: %w", listingID, err)
	}
	return exists, nil
}
