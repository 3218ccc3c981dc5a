package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"gocatalog_api/internal/catalog/models"
)

type ProductRepository struct {
	db Queryer
}

func NewProductRepository(db Queryer) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `product_id, brand_id, model, year, category, sub_category, style,
	slug, main_image_url, description, created_at`

func (r *ProductRepository) scanProduct(row *sql.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.BrandID, &p.Model, &p.Year, &p.Category, &p.SubCategory,
		&p.Style, &p.Slug, &p.MainImageURL, &p.Description, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) GetBySlug(slug string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM catalog.products WHERE slug = $1`
	return r.scanProduct(r.db.QueryRow(query, slug))
}

// GetByNaturalKey matches on (brand, model, year). IS NOT DISTINCT FROM makes
// an absent year match another absent year for the same brand+model.
func (r *ProductRepository) GetByNaturalKey(brandID sql.NullInt64, model string, year sql.NullInt64) (*models.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM catalog.products
		WHERE brand_id IS NOT DISTINCT FROM $1 AND model = $2 AND year IS NOT DISTINCT FROM $3`
	return r.scanProduct(r.db.QueryRow(query, brandID, model, year))
}

func (r *ProductRepository) SlugExists(slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM catalog.products WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug %q: %w", slug, err)
	}
	return exists, nil
}

func (r *ProductRepository) Insert(p *models.Product) error {
	query := `INSERT INTO catalog.products
		(brand_id, model, year, category, sub_category, style, slug, main_image_url, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING product_id, created_at`

	err := r.db.QueryRow(query,
		p.BrandID, p.Model, p.Year, p.Category, p.SubCategory, p.Style,
		p.Slug, p.MainImageURL, p.Description,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product %q: %w", p.Slug, err)
	}
	return nil
}
