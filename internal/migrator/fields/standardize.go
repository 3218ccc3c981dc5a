package fields

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MergeSeparator joins values when two raw keys of one record map to the
// same canonical field, so no information is silently overwritten.
const MergeSeparator = " / "

// Structural canonical fields are consumed by the engine directly and never
// become spec rows.
var structural = map[string]struct{}{
	"source": {}, "importer": {}, "domain": {}, "url": {},
	"images": {}, "main_image": {}, "gallery": {}, "specs": {},
	"brand": {}, "model": {}, "year": {},
	"category": {}, "sub_category": {}, "style": {},
	"price": {}, "discounted_price": {}, "currency": {},
	"description": {},
}

// IsStructural reports whether a canonical field is consumed structurally
// rather than stored as a spec.
func IsStructural(name string) bool {
	_, ok := structural[name]
	return ok
}

// RawField preserves one source attribute verbatim for display.
type RawField struct {
	Key   string
	Value string
}

// Source is the canonicalized source block of a record.
type Source struct {
	Importer string
	Domain   string
	URL      string
}

// Record is the canonical view of one scraped record. Fields holds merged
// scalar values under canonical names; RawSpecs preserves the original
// key/value text of every recognized non-structural attribute.
type Record struct {
	Fields    map[string]string
	Source    Source
	MainImage string
	Gallery   []string
	RawSpecs  []RawField
	Dropped   []string
}

// Get returns the merged value of a canonical field, "" when absent.
func (r *Record) Get(name string) string {
	return r.Fields[name]
}

// Standardize maps every key of a raw record to its canonical field name.
// Keys are trimmed before lookup; unknown keys are dropped. Nested
// source/images/specs blocks are unpacked; repeated canonical fields merge
// with MergeSeparator.
func Standardize(raw map[string]interface{}) *Record {
	rec := &Record{Fields: make(map[string]string)}

	for _, key := range sortedKeys(raw) {
		value := raw[key]
		canonical, ok := Canonical(key)
		if !ok {
			rec.Dropped = append(rec.Dropped, key)
			continue
		}
		switch canonical {
		case "source":
			rec.applySourceBlock(value)
		case "images":
			rec.applyImagesBlock(value)
		case "specs":
			rec.applySpecsBlock(value)
		default:
			rec.applyScalar(key, canonical, value)
		}
	}
	return rec
}

func (r *Record) applyScalar(rawKey, canonical string, value interface{}) {
	s := stringify(value)
	if s == "" {
		return
	}
	r.merge(canonical, s)
	if !IsStructural(canonical) {
		r.RawSpecs = append(r.RawSpecs, RawField{Key: strings.TrimSpace(rawKey), Value: s})
	}
}

func (r *Record) merge(canonical, value string) {
	if prev, ok := r.Fields[canonical]; ok && prev != "" {
		r.Fields[canonical] = prev + MergeSeparator + value
		return
	}
	r.Fields[canonical] = value
}

func (r *Record) applySourceBlock(value interface{}) {
	block, ok := value.(map[string]interface{})
	if !ok {
		return
	}
	for _, key := range sortedKeys(block) {
		canonical, known := Canonical(key)
		if !known {
			continue
		}
		s := stringify(block[key])
		switch canonical {
		case "importer":
			r.Source.Importer = s
		case "domain":
			r.Source.Domain = s
		case "url":
			r.Source.URL = s
		}
	}
}

func (r *Record) applyImagesBlock(value interface{}) {
	switch block := value.(type) {
	case map[string]interface{}:
		for _, key := range sortedKeys(block) {
			canonical, known := Canonical(key)
			if !known {
				continue
			}
			switch canonical {
			case "main_image":
				r.MainImage = stringify(block[key])
			case "gallery":
				r.Gallery = append(r.Gallery, stringList(block[key])...)
			}
		}
	case []interface{}:
		// Some sites ship a flat URL list instead of a main/gallery block.
		r.Gallery = append(r.Gallery, stringList(block)...)
	}
}

func (r *Record) applySpecsBlock(value interface{}) {
	block, ok := value.(map[string]interface{})
	if !ok {
		return
	}
	for _, key := range sortedKeys(block) {
		canonical, known := Canonical(key)
		if !known {
			r.Dropped = append(r.Dropped, key)
			continue
		}
		r.applyScalar(key, canonical, block[key])
	}
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		if s := stringify(v); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := stringify(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sortedKeys gives a deterministic iteration order so merge results and raw
// spec ordering are stable across runs.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
