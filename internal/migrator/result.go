package migrator

// Outcome classifies what the engine did with a single record.
type Outcome int

const (
	// OutcomeAdded means a new product was created with its fan-out rows.
	OutcomeAdded Outcome = iota
	// OutcomeDuplicate means the record matched an existing product by slug
	// or natural key. Not a failure: missing listings or prices may still
	// have been topped up.
	OutcomeDuplicate
	// OutcomeInvalid means validation rejected the record.
	OutcomeInvalid
	// OutcomeFailed means the record's writes were rolled back.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RecordResult is the explicit per-record outcome consumed by the
// controller's aggregation loop.
type RecordResult struct {
	Outcome Outcome
	Slug    string
	Reason  string
	Err     error

	BrandAdded    bool
	ListingAdded  bool
	PriceAdded    bool
	RawSpecsAdded int
	StdSpecsAdded int
	ImagesAdded   int
}
