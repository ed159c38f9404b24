// Package catalog holds the curated respirator catalog and filters it into
// recommendations for a face-size category.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/kozaktomas/mask-fitter/internal/config"
)

// DefaultCategory is used for lookups of unknown categories.
const DefaultCategory = "medium"

// ErrInvalidCandidate is returned when a catalog entry fails validation.
var ErrInvalidCandidate = errors.New("invalid catalog candidate")

// Candidate is one respirator recommendation.
type Candidate struct {
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Size     string `json:"size"`
	FitScore int    `json:"fit_score"`
}

// ID identifies a candidate in inventory lists, e.g. "3M 8210 N95 - Regular".
func (c Candidate) ID() string {
	return fmt.Sprintf("%s %s - %s", c.Brand, c.Model, c.Size)
}

// Availability is the set of candidate IDs in stock.
// A nil Availability means no inventory constraint.
type Availability map[string]struct{}

// NewAvailability builds an availability set. An empty list yields nil, which
// callers at input boundaries treat as "no constraint".
func NewAvailability(ids []string) Availability {
	if len(ids) == 0 {
		return nil
	}
	a := make(Availability, len(ids))
	for _, id := range ids {
		a[id] = struct{}{}
	}
	return a
}

// Has reports whether id is available.
func (a Availability) Has(id string) bool {
	_, ok := a[id]
	return ok
}

// Catalog maps categories to their ordered candidate lists. It is read-only
// after construction and safe for concurrent use.
type Catalog struct {
	categories map[string][]Candidate
}

// New builds a catalog, copying the lists and validating fit scores.
func New(categories map[string][]Candidate) (*Catalog, error) {
	c := &Catalog{categories: make(map[string][]Candidate, len(categories))}
	for name, list := range categories {
		for i, cand := range list {
			if cand.Brand == "" || cand.Model == "" {
				return nil, fmt.Errorf("%w: %s[%d] needs brand and model", ErrInvalidCandidate, name, i)
			}
			if cand.FitScore < 0 || cand.FitScore > 100 {
				return nil, fmt.Errorf("%w: %s fit score %d outside [0, 100]", ErrInvalidCandidate, cand.ID(), cand.FitScore)
			}
		}
		cp := make([]Candidate, len(list))
		copy(cp, list)
		c.categories[name] = cp
	}
	return c, nil
}

// FromConfig builds a catalog from the configured table.
func FromConfig(cfg config.CatalogConfig) (*Catalog, error) {
	categories := make(map[string][]Candidate, len(cfg.Categories))
	for name, list := range cfg.Categories {
		for _, cand := range list {
			categories[name] = append(categories[name], Candidate{
				Brand:    cand.Brand,
				Model:    cand.Model,
				Size:     cand.Size,
				FitScore: cand.FitScore,
			})
		}
	}
	return New(categories)
}

// Categories returns the category names in the catalog, sorted.
func (c *Catalog) Categories() []string {
	return slices.Sorted(maps.Keys(c.categories))
}

// All returns the full list for category in catalog order.
// Unknown categories get the DefaultCategory list.
func (c *Catalog) All(category string) []Candidate {
	list, ok := c.categories[category]
	if !ok {
		list = c.categories[DefaultCategory]
	}
	cp := make([]Candidate, len(list))
	copy(cp, list)
	return cp
}

// Filter returns the candidates for category that are in available, keeping
// catalog order. With nil availability the full list is returned. An empty
// result is valid: Filter never falls back to the unfiltered list.
func (c *Catalog) Filter(category string, available Availability) []Candidate {
	all := c.All(category)
	if available == nil {
		return all
	}
	filtered := make([]Candidate, 0, len(all))
	for _, cand := range all {
		if available.Has(cand.ID()) {
			filtered = append(filtered, cand)
		}
	}
	return filtered
}
