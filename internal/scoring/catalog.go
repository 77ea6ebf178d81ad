// Package scoring implements the daily-dedup scoring engine: it turns inbound
// chat messages into idempotent, per-day, per-user point awards and renders
// the resulting standings.
package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog is an immutable mapping of recognized hashtag to point value.
// It is built once at startup from configuration and never mutated afterwards.
type Catalog struct {
	points map[string]int
	tags   []string
}

// NewCatalog builds a Catalog from the given hashtag/points mapping.
// The input map is copied, so later changes to it do not affect the catalog.
func NewCatalog(points map[string]int) (Catalog, error) {
	if len(points) == 0 {
		return Catalog{}, fmt.Errorf("hashtag catalog cannot be empty")
	}

	copied := make(map[string]int, len(points))
	tags := make([]string, 0, len(points))
	for tag, pts := range points {
		if strings.TrimSpace(tag) == "" {
			return Catalog{}, fmt.Errorf("hashtag catalog contains an empty tag")
		}
		if pts <= 0 {
			return Catalog{}, fmt.Errorf("hashtag %q has non-positive point value %d", tag, pts)
		}
		copied[tag] = pts
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return Catalog{points: copied, tags: tags}, nil
}

// Match returns the catalog hashtags that occur anywhere in text, in sorted
// order. Matching is literal substring containment, case-sensitive.
func (c Catalog) Match(text string) []string {
	if text == "" {
		return nil
	}
	var matched []string
	for _, tag := range c.tags {
		if strings.Contains(text, tag) {
			matched = append(matched, tag)
		}
	}
	return matched
}

// Points returns the point value of a catalog hashtag, or 0 if unknown.
func (c Catalog) Points(tag string) int {
	return c.points[tag]
}

// Len returns the number of hashtags in the catalog.
func (c Catalog) Len() int {
	return len(c.tags)
}

// DefaultHashtags returns the stock hashtag/points mapping used when none is
// configured.
func DefaultHashtags() map[string]int {
	return map[string]int{
		"#bilancia":             10,
		"#colazioneequilibrata": 5,
		"#collagene":            5,
		"#bombetta":             5,
		"#ricostruttore":        5,
		"#idratazionespecifica": 8,
		"#phytocomplete":        5,
		"#pranzobilanciato":     10,
		"#cenabilanciata":       10,
		"#spuntino1":            8,
		"#spuntino2":            8,
		"#integrazione1":        5,
		"#integrazione2":        5,
		"#workout":              15,
		"#pastosostitutivo":     15,
		"#detox":                15,
		"#sensazioni":           5,
		"#fotoiniziale":         10,
		"#fotofinale":           10,
	}
}
