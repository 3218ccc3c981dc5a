package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"gocatalog_api/internal/catalog/models"
)

type SourceRepository struct {
	db Queryer
}

func NewSourceRepository(db Queryer) *SourceRepository {
	return &SourceRepository{db: db}
}

func (r *SourceRepository) GetByDomain(domain string) (*models.Source, error) {
	query := `SELECT source_id, importer, domain, created_at FROM catalog.sources WHERE domain = $1`

	var source models.Source
	err := r.db.QueryRow(query, domain).Scan(&source.ID, &source.Importer, &source.Domain, &source.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get source by domain: %w", err)
	}

	return &source, nil
}

func (r *SourceRepository) Insert(importer, domain string) (*models.Source, error) {
	query := `INSERT INTO catalog.sources (importer, domain) VALUES ($1, $2) RETURNING source_id, created_at`

	source := models.Source{Importer: importer, Domain: domain}
	err := r.db.QueryRow(query, importer, domain).Scan(&source.ID, &source.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert source %q: %w", domain, err)
	}

	return &source, nil
}
