package infrastructure

import (
	"database/sql"
	"fmt"
	"log"
)

const (
	MigrationsSchemaName = "migrations.schema"
	CatalogSchemaName    = "catalog.schema"
	CatalogBrands        = "catalog.brands"
	CatalogSources       = "catalog.sources"
	CatalogProducts      = "catalog.products"
	CatalogListings      = "catalog.listings"
	CatalogPrices        = "catalog.prices"
	CatalogRawSpecs      = "catalog.raw_specs"
	CatalogStdSpecs      = "catalog.std_specs"
	CatalogImages        = "catalog.images"
)

type MigrationsSchema struct{}

func (m *MigrationsSchema) UpMigration(db *sql.DB) error {
	query := `
		CREATE SCHEMA IF NOT EXISTS migrations;
	`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations schema: %w", err)
	}
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS migrations.migrations (
            id SERIAL PRIMARY KEY,
            time TIMESTAMP NOT NULL,
            name VARCHAR(255) UNIQUE NOT NULL
        );
    `)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

type CatalogSchema struct{}

func (m *CatalogSchema) UpMigration(db *sql.DB) error {
	query := `
        CREATE SCHEMA IF NOT EXISTS catalog;
        `
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

type CatalogBrandsTable struct{}

func (m *CatalogBrandsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, CatalogBrands); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS catalog.brands (
		brand_id SERIAL PRIMARY KEY,
		name VARCHAR(255) UNIQUE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL
	);`
	if err := executeAndMarkMigration(db, query, CatalogBrands); err != nil {
		return err
	}
	log.Printf("Migration '%s' completed successfully.", CatalogBrands)
	return nil
}

type CatalogSourcesTable struct{}

func (m *CatalogSourcesTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, CatalogSources); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS catalog.sources (
		source_id SERIAL PRIMARY KEY,
		importer VARCHAR(255) NOT NULL,
		domain VARCHAR(255) UNIQUE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL
	);`
	if err := executeAndMarkMigration(db, query, CatalogSources); err != nil {
		return err
	}
	log.Printf("Migration '%s' completed successfully.", CatalogSources)
	return nil
}

type CatalogProductsTable struct{}

func (m *CatalogProductsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, CatalogProducts); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS catalog.products (
		product_id SERIAL PRIMARY KEY,
		brand_id INT REFERENCES catalog.brands(brand_id),
		model VARCHAR(255) NOT NULL,
		year INT,
		category VARCHAR(255),
		sub_category VARCHAR(255),
		style VARCHAR(255),
		slug VARCHAR(300) UNIQUE NOT NULL,
		main_image_url TEXT,
		description TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
		CONSTRAINT unique_brand_model_year UNIQUE (brand_id, model, year)
	);`
	if err := executeAndMarkMigration(db, query, CatalogProducts); err != nil {
		return err
	}
	log.Printf("Migration '%s' completed successfully.", CatalogProducts)
	return nil
}

type CatalogListingsTable struct{}

func (m *CatalogListingsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, CatalogListings); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS catalog.listings (
		listing_id SERIAL PRIMARY KEY,
		product_id INT NOT NULL REFERENCES catalog.products(product_id) ON DELETE CASCADE,
		source_id INT NOT NULL REFERENCES catalog.sources(source_id),
		product_url TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
		CONSTRAINT unique_source_product_url UNIQUE (source_id, product_url)
	);`
	if err := executeAndMarkMigration(db, query, CatalogListings); err != nil {
		return err
	}
	log.Printf("Migration '%s' completed successfully.", CatalogListings)
	return nil
}

type CatalogPricesTable struct{}

func (m *CatalogPricesTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, CatalogPrices); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS catalog.prices (
		price_id SERIAL PRIMARY KEY,
		listing_id INT NOT NULL REFERENCES catalog.listings(listing_id) ON DELETE CASCADE,
		original_price DECIMAL(12, 2),
		discounted_price DECIMAL(12, 2),
		currency VARCHAR(8) NOT NULL DEFAULT 'ILS',
		observed_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,
		CONSTRAINT price_present CHECK (original_price IS NOT NULL OR discounted_price IS NOT NULL)
	);`
	if err := executeAndMarkMigration(db, query, CatalogPrices); err != nil {
		return err
	}
	log.Printf("Migration '%s' completed successfully.", CatalogPrices)
	return nil
}

type CatalogRawSpecsTable struct{}

func (m *CatalogRawSpecsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, CatalogRawSpecs); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS catalog.raw_specs (
		raw_spec_id SERIAL PRIMARY KEY,
		listing_id INT NOT NULL REFERENCES catalog.listings(listing_id) ON DELETE CASCADE,
		raw_key TEXT NOT NULL,
		raw_value TEXT
	);`
	if err := executeAndMarkMigration(db, query, CatalogRawSpecs); err != nil {
		return err
	}
	log.Printf("Migration '%s' completed successfully.", CatalogRawSpecs)
	return nil
}

type CatalogStdSpecsTable struct{}

func (m *CatalogStdSpecsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, CatalogStdSpecs); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS catalog.std_specs (
		std_spec_id SERIAL PRIMARY KEY,
		product_id INT NOT NULL REFERENCES catalog.products(product_id) ON DELETE CASCADE,
		spec_name VARCHAR(100) NOT NULL,
		value TEXT,
		CONSTRAINT unique_product_spec UNIQUE (product_id, spec_name)
	);`
	if err := executeAndMarkMigration(db, query, CatalogStdSpecs); err != nil {
		return err
	}
	log.Printf("Migration '%s' completed successfully.", CatalogStdSpecs)
	return nil
}

type CatalogImagesTable struct{}

func (m *CatalogImagesTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, CatalogImages); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS catalog.images (
		image_id SERIAL PRIMARY KEY,
		product_id INT NOT NULL REFERENCES catalog.products(product_id) ON DELETE CASCADE,
		source_id INT NOT NULL REFERENCES catalog.sources(source_id),
		url TEXT NOT NULL,
		is_main BOOLEAN NOT NULL DEFAULT FALSE,
		position INT NOT NULL DEFAULT 0,
		CONSTRAINT unique_product_image_url UNIQUE (product_id, url)
	);`
	if err := executeAndMarkMigration(db, query, CatalogImages); err != nil {
		return err
	}
	log.Printf("Migration '%s' completed successfully.", CatalogImages)
	return nil
}

func checkAndSkipMigration(db *sql.DB, migrationName string) (bool, error) {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", migrationName).Scan(&migrationExists)
	if err != nil {
		return migrationExists, fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		log.Printf("Migration '%s' already completed. Skipping.", migrationName)
		return migrationExists, nil
	}
	return migrationExists, nil
}

func executeAndMarkMigration(db *sql.DB, query string, migrationName string) error {
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to execute migration '%s': %w", migrationName, err)
	}
	_, err = db.Exec("INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", migrationName)
	if err != nil {
		return fmt.Errorf("failed to mark migration '%s' as complete: %w", migrationName, err)
	}
	return nil
}
