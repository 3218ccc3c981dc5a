package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocatalog_api/config"
	"gocatalog_api/internal/catalog/storage"
	"gocatalog_api/internal/migrator"
	"gocatalog_api/internal/migrator/fetch"
	"gocatalog_api/pkg/dbconnect/postgres"
	"gocatalog_api/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the application config")
	dataDir := flag.String("data", "", "override the source document directory")
	force := flag.Bool("force", false, "skip the confirmation prompt (for scripted use)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("failed to load config %s: %v", *configPath, err)
		return 1
	}
	if *dataDir != "" {
		cfg.Migrator.DataDir = *dataDir
	}

	if !*force && !confirm() {
		log.Printf("aborted by operator")
		return 0
	}

	connector := postgres.NewPgConnector(&cfg.Postgres)
	db, err := connector.Connect()
	if err != nil {
		log.Printf("failed to connect to Postgres: %v", err)
		return 1
	}
	defer db.Close()

	docs, err := collectDocuments(cfg.Migrator)
	if err != nil {
		log.Printf("failed to collect source documents: %v", err)
		return 1
	}
	if len(docs) == 0 {
		log.Printf("no source documents found, nothing to migrate")
		return 0
	}

	m := migrator.New(storage.NewPgStore(db), logger.NewLogger(os.Stdout, "[migrator]"), migrator.Options{
		DefaultCurrency: cfg.Migrator.DefaultCurrency,
		ErrorSampleSize: cfg.Migrator.ErrorSample,
	})

	report, err := m.Run(context.Background(), docs)
	if err != nil {
		log.Printf("migration run failed: %v", err)
		return 1
	}

	fmt.Print(report.String())
	if report.AnyFileFailed() {
		return 1
	}
	return 0
}

func confirm() bool {
	fmt.Print("This run will write into the catalog schema. Continue? [y/N]: ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// collectDocuments gathers the local *.json documents plus any configured
// feed URLs, in a stable order.
func collectDocuments(cfg config.MigratorConfig) ([]migrator.Document, error) {
	var docs []migrator.Document

	if cfg.DataDir != "" {
		paths, err := filepath.Glob(filepath.Join(cfg.DataDir, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(paths)
		for _, path := range paths {
			path := path
			docs = append(docs, migrator.Document{
				Name: filepath.Base(path),
				Load: func() ([]byte, error) { return os.ReadFile(path) },
			})
		}
	}

	if len(cfg.FeedURLs) > 0 {
		fetcher := fetch.NewFetcher(cfg.FetchRPS)
		for _, url := range cfg.FeedURLs {
			url := url
			docs = append(docs, migrator.Document{
				Name: url,
				Load: func() ([]byte, error) { return fetcher.Fetch(context.Background(), url) },
			})
		}
	}

	return docs, nil
}
