package main

import (
	"flag"
	"log"
	"os"

	"gocatalog_api/config"
	"gocatalog_api/migrations/infrastructure"
	"gocatalog_api/pkg/dbconnect/migration"
	"gocatalog_api/pkg/dbconnect/postgres"
)

// The migration engine itself never runs DDL; this command bootstraps the
// catalog schema before the first run.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the application config")
	flag.Parse()

	var pgCfg *config.PostgresConfig
	if cfg, err := config.LoadConfig(*configPath); err == nil {
		pgCfg = &cfg.Postgres
	} else if os.IsNotExist(err) {
		pgCfg = config.GetPostgresConfig()
	} else {
		log.Fatalf("failed to load config %s: %v", *configPath, err)
	}

	db, err := postgres.NewPgConnector(pgCfg).Connect()
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	migrations := []migration.MigrationInterface{
		&infrastructure.MigrationsSchema{},
		&infrastructure.CatalogSchema{},
		&infrastructure.CatalogBrandsTable{},
		&infrastructure.CatalogSourcesTable{},
		&infrastructure.CatalogProductsTable{},
		&infrastructure.CatalogListingsTable{},
		&infrastructure.CatalogPricesTable{},
		&infrastructure.CatalogRawSpecsTable{},
		&infrastructure.CatalogStdSpecsTable{},
		&infrastructure.CatalogImagesTable{},
	}
	for _, m := range migrations {
		if err := m.UpMigration(db); err != nil {
			log.Fatalf("schema bootstrap failed: %v", err)
		}
	}
	log.Println("catalog schema is up to date")
}
