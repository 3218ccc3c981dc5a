package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryLoaded(t *testing.T) {
	require.Greater(t, DictionarySize(), 100, "embedded dictionary should carry the full key mapping")

	name, ok := Canonical("  יצרן ")
	require.True(t, ok)
	assert.Equal(t, "brand", name)

	name, ok = Canonical("Frame")
	require.True(t, ok)
	assert.Equal(t, "frame", name)

	_, ok = Canonical("definitely-not-a-key")
	assert.False(t, ok)
}

func TestStandardizeHebrewKeys(t *testing.T) {
	rec := Standardize(map[string]interface{}{
		"יצרן": "Giant",
		"דגם":  "Trance X",
		"שנה":  2024.0,
		"מחיר": "₪12,500",
		"שלדה": "ALUXX SL",
	})

	assert.Equal(t, "Giant", rec.Get("brand"))
	assert.Equal(t, "Trance X", rec.Get("model"))
	assert.Equal(t, "2024", rec.Get("year"))
	assert.Equal(t, "₪12,500", rec.Get("price"))
	assert.Equal(t, "ALUXX SL", rec.Get("frame"))
	assert.Empty(t, rec.Dropped)

	// Non-structural attributes are kept verbatim for raw spec storage.
	require.Len(t, rec.RawSpecs, 1)
	assert.Equal(t, "שלדה", rec.RawSpecs[0].Key)
	assert.Equal(t, "ALUXX SL", rec.RawSpecs[0].Value)
}

func TestStandardizeMergesRepeatedCanonical(t *testing.T) {
	rec := Standardize(map[string]interface{}{
		"Rims": "Giant eTRX",
		"rims": "28h",
	})

	// Keys iterate in sorted order, so "Rims" lands first.
	assert.Equal(t, "Giant eTRX / 28h", rec.Get("rims"))
	require.Len(t, rec.RawSpecs, 2)
}

func TestStandardizeDropsUnknownKeys(t *testing.T) {
	rec := Standardize(map[string]interface{}{
		"model":        "Big Nine",
		"mystery_blob": "???",
	})

	assert.Equal(t, "Big Nine", rec.Get("model"))
	assert.Equal(t, []string{"mystery_blob"}, rec.Dropped)
	assert.Empty(t, rec.RawSpecs)
}

func TestStandardizeUnpacksBlocks(t *testing.T) {
	rec := Standardize(map[string]interface{}{
		"source": map[string]interface{}{
			"importer": "ofanaim",
			"domain":   "www.ofanaim.co.il",
			"url":      "https://www.ofanaim.co.il/p/1",
		},
		"images": map[string]interface{}{
			"main_image": "https://cdn/img/main.jpg",
			"gallery": []interface{}{
				"https://cdn/img/1.jpg",
				"https://cdn/img/2.jpg",
			},
		},
		"specs": map[string]interface{}{
			"שלדה":    "ALUXX SL",
			"unknown": "dropped",
		},
	})

	assert.Equal(t, "ofanaim", rec.Source.Importer)
	assert.Equal(t, "www.ofanaim.co.il", rec.Source.Domain)
	assert.Equal(t, "https://www.ofanaim.co.il/p/1", rec.Source.URL)
	assert.Equal(t, "https://cdn/img/main.jpg", rec.MainImage)
	assert.Equal(t, []string{"https://cdn/img/1.jpg", "https://cdn/img/2.jpg"}, rec.Gallery)
	assert.Equal(t, "ALUXX SL", rec.Get("frame"))
	assert.Equal(t, []string{"unknown"}, rec.Dropped)
}

func TestStandardizeFlatImageList(t *testing.T) {
	rec := Standardize(map[string]interface{}{
		"images": []interface{}{"https://cdn/a.jpg", "https://cdn/b.jpg"},
	})

	assert.Empty(t, rec.MainImage)
	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}, rec.Gallery)
}
