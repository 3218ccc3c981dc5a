package repositories

import (
	"fmt"

	"gocatalog_api/internal/catalog/models"
)

type SpecRepository struct {
	db Queryer
}

func NewSpecRepository(db Queryer) *SpecRepository {
	return &SpecRepository{db: db}
}

// InsertRaw stores a source attribute verbatim. Raw specs keep the original
// key text for display and are never deduplicated by meaning.
func (r *SpecRepository) InsertRaw(s *models.RawSpec) error {
	query := `INSERT INTO catalog.raw_specs (listing_id, raw_key, raw_value)
		VALUES ($1, $2, $3) RETURNING raw_spec_id`

	err := r.db.QueryRow(query, s.ListingID, s.RawKey, s.RawValue).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to insert raw spec %q: %w", s.RawKey, err)
	}
	return nil
}

// UpsertStd writes the canonicalized copy used for filtering, last write
// wins on (product, spec name).
func (r *SpecRepository) UpsertStd(s *models.StdSpec) (bool, error) {
	query := `INSERT INTO catalog.std_specs (product_id, spec_name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, spec_name) DO UPDATE SET value = EXCLUDED.value
		RETURNING std_spec_id, (xmax = 0) AS inserted`

	var inserted bool
	err := r.db.QueryRow(query, s.ProductID, s.SpecName, s.Value).Scan(&s.ID, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert std spec %q: %w", s.SpecName, err)
	}
	return inserted, nil
}
