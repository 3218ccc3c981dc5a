package migrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// Counters aggregates what one file (or the whole run) produced.
type Counters struct {
	Records    int
	Added      int
	Duplicates int
	Invalid    int
	Failed     int

	Brands   int
	Sources  int
	Listings int
	Prices   int
	RawSpecs int
	StdSpecs int
	Images   int
}

func (c *Counters) add(o Counters) {
	c.Records += o.Records
	c.Added += o.Added
	c.Duplicates += o.Duplicates
	c.Invalid += o.Invalid
	c.Failed += o.Failed
	c.Brands += o.Brands
	c.Sources += o.Sources
	c.Listings += o.Listings
	c.Prices += o.Prices
	c.RawSpecs += o.RawSpecs
	c.StdSpecs += o.StdSpecs
	c.Images += o.Images
}

// Skipped counts records that produced no new product.
func (c *Counters) Skipped() int {
	return c.Duplicates + c.Invalid
}

// FileReport holds the outcome of one source document.
type FileReport struct {
	Name     string
	Counters Counters
	FatalMsg string
	// Errors keeps the first N messages per category so every skip stays
	// attributable without flooding the report.
	Errors map[string][]string
	sample int
}

func (f *FileReport) Tally(res RecordResult) {
	f.Counters.Records++
	switch res.Outcome {
	case OutcomeAdded:
		f.Counters.Added++
	case OutcomeDuplicate:
		f.Counters.Duplicates++
	case OutcomeInvalid:
		f.Counters.Invalid++
		f.sampleError("invalid", res.Reason)
	case OutcomeFailed:
		f.Counters.Failed++
		f.sampleError("failed", fmt.Sprintf("%s: %v", res.Reason, res.Err))
	}

	if res.BrandAdded {
		f.Counters.Brands++
	}
	if res.ListingAdded {
		f.Counters.Listings++
	}
	if res.PriceAdded {
		f.Counters.Prices++
	}
	f.Counters.RawSpecs += res.RawSpecsAdded
	f.Counters.StdSpecs += res.StdSpecsAdded
	f.Counters.Images += res.ImagesAdded
}

// Fatal marks the file as abandoned; its pending writes were rolled back.
func (f *FileReport) Fatal(msg string) {
	f.FatalMsg = msg
}

func (f *FileReport) sampleError(category, msg string) {
	if len(f.Errors[category]) >= f.sample {
		return
	}
	f.Errors[category] = append(f.Errors[category], msg)
}

func (f *FileReport) Summary() string {
	c := f.Counters
	return fmt.Sprintf("%d records: %d added, %d duplicate, %d invalid, %d failed",
		c.Records, c.Added, c.Duplicates, c.Invalid, c.Failed)
}

// RunReport is the migration run summary printed for the operator.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      []*FileReport
	sample     int
}

func NewRunReport(sampleSize int) *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		sample:    sampleSize,
	}
}

func (r *RunReport) File(name string) *FileReport {
	fr := &FileReport{
		Name:   name,
		Errors: make(map[string][]string),
		sample: r.sample,
	}
	r.Files = append(r.Files, fr)
	return fr
}

func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
}

func (r *RunReport) Totals() Counters {
	var totals Counters
	for _, fr := range r.Files {
		if fr.FatalMsg != "" {
			// Brand/Source rows survive a rollback; product-level counts of
			// an abandoned file never reached the store.
			totals.Brands += fr.Counters.Brands
			totals.Sources += fr.Counters.Sources
			continue
		}
		totals.add(fr.Counters)
	}
	return totals
}

// AnyFileFailed reports whether at least one document of the run was
// abandoned. The process exits non-zero in that case so scripted runs
// cannot miss a rolled-back file, even when the other files committed.
func (r *RunReport) AnyFileFailed() bool {
	for _, fr := range r.Files {
		if fr.FatalMsg != "" {
			return true
		}
	}
	return false
}

func (r *RunReport) Summary() string {
	t := r.Totals()
	return fmt.Sprintf("%d added, %d skipped, %d failed across %d file(s)",
		t.Added, t.Skipped(), t.Failed, len(r.Files))
}

// String renders the operator-facing run report. Column widths are computed
// with runewidth so mixed Hebrew/Latin file names stay aligned.
func (r *RunReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "migration run %s (%s)\n", r.RunID, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	nameWidth := len("file")
	for _, fr := range r.Files {
		if w := runewidth.StringWidth(fr.Name); w > nameWidth {
			nameWidth = w
		}
	}

	fmt.Fprintf(&b, "%s  %7s %7s %7s %7s %7s %9s %7s %7s\n",
		pad("file", nameWidth), "records", "added", "dup", "invalid", "failed", "listings", "prices", "images")
	for _, fr := range r.Files {
		c := fr.Counters
		fmt.Fprintf(&b, "%s  %7d %7d %7d %7d %7d %9d %7d %7d\n",
			pad(fr.Name, nameWidth), c.Records, c.Added, c.Duplicates, c.Invalid, c.Failed,
			c.Listings, c.Prices, c.Images)
		if fr.FatalMsg != "" {
			fmt.Fprintf(&b, "%s  ROLLED BACK: %s\n", pad("", nameWidth), fr.FatalMsg)
		}
	}

	t := r.Totals()
	fmt.Fprintf(&b, "totals: %d brands, %d sources, %d products added, %d skipped (%d duplicate, %d invalid), %d failed\n",
		t.Brands, t.Sources, t.Added, t.Skipped(), t.Duplicates, t.Invalid, t.Failed)
	fmt.Fprintf(&b, "        %d listings, %d prices (coverage %s), %d raw specs, %d std specs, %d images\n",
		t.Listings, t.Prices, coverage(t.Prices, t.Listings), t.RawSpecs, t.StdSpecs, t.Images)

	for _, fr := range r.Files {
		for _, category := range []string{"invalid", "failed"} {
			for _, msg := range fr.Errors[category] {
				fmt.Fprintf(&b, "  [%s] %s: %s\n", category, fr.Name, msg)
			}
		}
	}
	return b.String()
}

func coverage(prices, listings int) string {
	if listings == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d/%d", prices, listings)
}

func pad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
