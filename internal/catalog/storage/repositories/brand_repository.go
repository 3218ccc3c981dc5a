package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"gocatalog_api/internal/catalog/models"
)

type BrandRepository struct {
	db Queryer
}

func NewBrandRepository(db Queryer) *BrandRepository {
	return &BrandRepository{db: db}
}

func (r *BrandRepository) GetByName(name string) (*models.Brand, error) {
	query := `SELECT brand_id, name, created_at FROM catalog.brands WHERE name = $1`

	var brand models.Brand
	err := r.db.QueryRow(query, name).Scan(&brand.ID, &brand.Name, &brand.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get brand by name: %w", err)
	}

	return &brand, nil
}

func (r *BrandRepository) Insert(name string) (*models.Brand, error) {
	query := `INSERT INTO catalog.brands (name) VALUES ($1) RETURNING brand_id, created_at`

	brand := models.Brand{Name: name}
	err := r.db.QueryRow(query, name).Scan(&brand.ID, &brand.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert brand %q: %w", name, err)
	}

	return &brand, nil
}
