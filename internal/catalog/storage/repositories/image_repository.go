package repositories

import (
	"fmt"

	"gocatalog_api/internal/catalog/models"
)

type ImageRepository struct {
	db Queryer
}

func NewImageRepository(db Queryer) *ImageRepository {
	return &ImageRepository{db: db}
}

// Insert adds a gallery image, deduplicated by URL within the product.
// Returns false when the URL is already attached to the product.
func (r *ImageRepository) Insert(im *models.Image) (bool, error) {
	query := `INSERT INTO catalog.images (product_id, source_id, url, is_main, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, url) DO NOTHING`

	res, err := r.db.Exec(query, im.ProductID, im.SourceID, im.URL, im.IsMain, im.Position)
	if err != nil {
		return false, fmt.Errorf("failed to insert image %q: %w", im.URL, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read image insert result: %w", err)
	}
	return affected > 0, nil
}

// MaxPosition reports the highest gallery position of a product, -1 when the
// product has no images yet. Used to keep ordering ascending when a second
// source contributes images to an existing product.
func (r *ImageRepository) MaxPosition(productID int64) (int, error) {
	var max int
	err := r.db.QueryRow(`SELECT COALESCE(MAX(position), -1) FROM catalog.images WHERE product_id = $1`, productID).
		Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read image positions for product %d: %w", productID, err)
	}
	return max, nil
}

// HasMain reports whether the product already carries a main-flagged image.
func (r *ImageRepository) HasMain(productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM catalog.images WHERE product_id = $1 AND is_main)`, productID).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check main image for product %d: %w", productID, err)
	}
	return exists, nil
}
