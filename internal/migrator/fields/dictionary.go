// Package fields maps the arbitrarily named keys of scraped records onto the
// fixed set of canonical field names used by the migration engine.
//
// The mapping itself is configuration, not control flow: it lives in the
// embedded fields.yaml and is loaded exactly once. Adding a new site's key
// variants never touches engine code.
package fields

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fields.yaml
var dictionaryYAML []byte

var dictionary map[string]string

func init() {
	d, err := loadDictionary(dictionaryYAML)
	if err != nil {
		panic(fmt.Sprintf("fields: embedded dictionary is invalid: %v", err))
	}
	dictionary = d
}

func loadDictionary(data []byte) (map[string]string, error) {
	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	d := make(map[string]string, len(raw))
	for k, v := range raw {
		d[normalizeKey(k)] = v
	}
	return d, nil
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// Canonical resolves a raw key to its canonical field name. The second
// return is false for keys not present in the dictionary.
func Canonical(rawKey string) (string, bool) {
	name, ok := dictionary[normalizeKey(rawKey)]
	return name, ok
}

// DictionarySize reports the number of loaded dictionary entries.
func DictionarySize() int {
	return len(dictionary)
}
