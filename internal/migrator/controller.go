// Package migrator implements the catalog normalization and idempotent
// migration engine: it reads standardized-but-heterogeneous scraped records,
// resolves them against existing catalog entities and writes a referentially
// consistent relational representation. Re-running it against the same input
// never duplicates data.
package migrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gocatalog_api/internal/catalog/models"
	"gocatalog_api/internal/catalog/storage"
	"gocatalog_api/internal/migrator/fields"
	"gocatalog_api/pkg/logger"
)

const defaultCurrency = "ILS"

// Options configure one migration run.
type Options struct {
	// DefaultCurrency is used for price rows whose record carries no
	// currency field. Defaults to ILS.
	DefaultCurrency string
	// ErrorSampleSize caps the number of error messages kept per category
	// in the run report. Defaults to 10.
	ErrorSampleSize int
}

// Document is one source input: a named loader for a JSON array of records.
type Document struct {
	Name string
	Load func() ([]byte, error)
}

// Migrator is the batch controller. It is single-writer and process-local:
// the entity caches and the in-batch slug set live for exactly one run, so
// a fresh Migrator must be created per invocation.
type Migrator struct {
	store      storage.Store
	cache      *EntityCache
	log        logger.Logger
	currency   string
	sampleSize int
	batchSlugs map[string]struct{}
}

func New(store storage.Store, log logger.Logger, opts Options) *Migrator {
	currency := opts.DefaultCurrency
	if currency == "" {
		currency = defaultCurrency
	}
	sample := opts.ErrorSampleSize
	if sample <= 0 {
		sample = 10
	}
	return &Migrator{
		store:      store,
		cache:      NewEntityCache(store),
		log:        log,
		currency:   currency,
		sampleSize: sample,
		batchSlugs: make(map[string]struct{}),
	}
}

// Run migrates every document sequentially. A failing file is abandoned and
// logged; the run continues with the next one. The returned report is always
// non-nil.
func (m *Migrator) Run(ctx context.Context, docs []Document) (*RunReport, error) {
	report := NewRunReport(m.sampleSize)
	m.log.Log("migration run %s started with %d source document(s)", report.RunID, len(docs))

	for _, doc := range docs {
		fr := report.File(doc.Name)

		data, err := doc.Load()
		if err != nil {
			m.log.Log("failed to load %s: %v", doc.Name, err)
			fr.Fatal(fmt.Sprintf("load failed: %v", err))
			continue
		}

		var raws []map[string]interface{}
		if err := json.Unmarshal(data, &raws); err != nil {
			m.log.Log("failed to decode %s: %v", doc.Name, err)
			fr.Fatal(fmt.Sprintf("decode failed: %v", err))
			continue
		}

		m.migrateFile(ctx, doc.Name, raws, fr)
	}

	report.Finish()
	m.log.Log("migration run %s finished: %s", report.RunID, report.Summary())
	return report, nil
}

// migrateFile commits once for the whole file. A crash mid-file therefore
// never leaves the file partially committed beyond the last commit boundary.
func (m *Migrator) migrateFile(ctx context.Context, name string, raws []map[string]interface{}, fr *FileReport) {
	flog := m.log.WithPrefix("[" + name + "]")

	recs := make([]*fields.Record, len(raws))
	for i, raw := range raws {
		recs[i] = fields.Standardize(raw)
	}

	src, err := m.resolveFileSource(name, recs, fr)
	if err != nil {
		flog.Log("abandoning file: %v", err)
		fr.Fatal(err.Error())
		return
	}

	tx, err := m.store.BeginFile(ctx)
	if err != nil {
		flog.Log("abandoning file: %v", err)
		fr.Fatal(err.Error())
		return
	}
	defer tx.Rollback()

	batch := newBatchState()
	for i, rec := range recs {
		res := m.migrateRecord(tx, batch, src, rec)
		fr.Tally(res)

		if res.Err != nil {
			flog.Log("record %d (%s): %v", i, res.Slug, res.Err)
			if isFileFatal(res.Err) {
				fr.Fatal(fmt.Sprintf("record %d: %v", i, res.Err))
				return
			}
		}
		if len(rec.Dropped) > 0 {
			flog.Log("record %d: dropped unknown keys %v", i, rec.Dropped)
		}
	}

	if err := tx.Commit(); err != nil {
		flog.Log("commit failed: %v", err)
		fr.Fatal(fmt.Sprintf("commit failed: %v", err))
		return
	}
	flog.Log("committed: %s", fr.Summary())
}

// resolveFileSource resolves the file's Source once, from the first record
// carrying a source domain. Source is a prerequisite for every record, so a
// missing domain or a persistence failure abandons the file.
func (m *Migrator) resolveFileSource(name string, recs []*fields.Record, fr *FileReport) (*models.Source, error) {
	var importer, domain string
	for _, rec := range recs {
		if rec.Source.Domain != "" {
			importer = rec.Source.Importer
			domain = rec.Source.Domain
			break
		}
	}
	if domain == "" {
		return nil, fmt.Errorf("no record in %s carries a source domain", name)
	}
	if importer == "" {
		importer = name
	}

	src, created, err := m.cache.Source(importer, domain)
	if err != nil {
		return nil, err
	}
	if created {
		fr.Counters.Sources++
	}
	return src, nil
}

// isFileFatal reports whether a record error poisons the rest of the file:
// either a Brand/Source prerequisite failure or a broken file transaction.
func isFileFatal(err error) bool {
	var prereq *PrereqError
	return errors.As(err, &prereq) || errors.Is(err, storage.ErrTxBroken)
}
