// Package headform classifies facial measurements into face-size categories.
//
// Categories are described by an ordered profile table. A measurement matches a
// profile when both its bizygomatic breadth and its menton-sellion length fall
// inside the profile's inclusive ranges. Ranges of neighbouring categories
// overlap; the first matching profile in table order wins.
package headform

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kozaktomas/mask-fitter/internal/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category names produced by the fallback ladder.
const (
	CategorySmall      = "small"
	CategoryMedium     = "medium"
	CategoryLarge      = "large"
	CategoryLongNarrow = "long_narrow"
	CategoryShortWide  = "short_wide"
)

// ErrInvalidProfile is returned when the profile table fails validation.
var ErrInvalidProfile = errors.New("invalid headform profile")

// Range is an inclusive millimetre interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range, bounds included.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Position returns where v sits inside the range, 0 at Min and 1 at Max.
// A zero-width range reports the centre.
func (r Range) Position(v float64) float64 {
	width := r.Max - r.Min
	if width == 0 {
		return 0.5
	}
	return (v - r.Min) / width
}

// Center returns the midpoint of the range.
func (r Range) Center() float64 {
	return (r.Min + r.Max) / 2
}

// Profile is one face-size category.
type Profile struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Population    string `json:"population"`
	Bizygomatic   Range  `json:"bizygomatic_breadth"`
	MentonSellion Range  `json:"menton_sellion"`
}

// Contains reports whether both measurements fall inside the profile.
func (p Profile) Contains(bizygomatic, mentonSellion float64) bool {
	return p.Bizygomatic.Contains(bizygomatic) && p.MentonSellion.Contains(mentonSellion)
}

// Profiles is the ordered profile table. Order is the match order.
type Profiles []Profile

// Validate checks names are present and unique and every range is well formed.
func (ps Profiles) Validate() error {
	if len(ps) == 0 {
		return fmt.Errorf("%w: table is empty", ErrInvalidProfile)
	}
	seen := make(map[string]bool, len(ps))
	for i, p := range ps {
		if p.Name == "" {
			return fmt.Errorf("%w: profile %d has no name", ErrInvalidProfile, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate profile %q", ErrInvalidProfile, p.Name)
		}
		seen[p.Name] = true
		for _, r := range []Range{p.Bizygomatic, p.MentonSellion} {
			if !finite(r.Min) || !finite(r.Max) || r.Min > r.Max {
				return fmt.Errorf("%w: %q has range [%v, %v]", ErrInvalidProfile, p.Name, r.Min, r.Max)
			}
		}
	}
	return nil
}

// Lookup returns the named profile.
func (ps Profiles) Lookup(name string) (Profile, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// FromConfig converts the configured profile table, preserving order.
func FromConfig(cfg config.HeadformsConfig) (Profiles, error) {
	ps := make(Profiles, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		ps = append(ps, Profile{
			Name:          p.Name,
			Description:   p.Description,
			Population:    p.Population,
			Bizygomatic:   Range{Min: p.BizygomaticBreadth[0], Max: p.BizygomaticBreadth[1]},
			MentonSellion: Range{Min: p.MentonSellion[0], Max: p.MentonSellion[1]},
		})
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// DisplayName turns a category slug into a title ("long_narrow" -> "Long Narrow").
func DisplayName(category string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(category, "_", " "))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
