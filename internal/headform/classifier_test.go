package headform

import (
	"errors"
	"math"
	"testing"

	"github.com/kozaktomas/mask-fitter/internal/config"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

func testProfiles() Profiles {
	return Profiles{
		{Name: "small", Bizygomatic: Range{125, 135}, MentonSellion: Range{105, 115}},
		{Name: "medium", Bizygomatic: Range{135, 145}, MentonSellion: Range{115, 125}},
		{Name: "large", Bizygomatic: Range{145, 160}, MentonSellion: Range{125, 135}},
		{Name: "long_narrow", Bizygomatic: Range{125, 140}, MentonSellion: Range{125, 140}},
		{Name: "short_wide", Bizygomatic: Range{145, 165}, MentonSellion: Range{105, 120}},
	}
}

func mustClassifier(t *testing.T, ps Profiles) *Classifier {
	t.Helper()
	c, err := NewClassifier(ps)
	if err != nil {
		t.Fatalf("NewClassifier() error: %v", err)
	}
	return c
}

func TestClassify(t *testing.T) {
	c := mustClassifier(t, testProfiles())

	tests := []struct {
		name           string
		bizyg, mensell float64
		wantCategory   string
		wantConfidence int
		wantMatched    bool
	}{
		{name: "medium centre clamps to 99", bizyg: 140, mensell: 120, wantCategory: "medium", wantConfidence: 99, wantMatched: true},
		{name: "shared corner resolved by table order", bizyg: 135, mensell: 115, wantCategory: "small", wantConfidence: 60, wantMatched: true},
		{name: "long narrow off centre", bizyg: 130, mensell: 130, wantCategory: "long_narrow", wantConfidence: 67, wantMatched: true},
		{name: "short wide centre of breadth", bizyg: 155, mensell: 110, wantCategory: "short_wide", wantConfidence: 83, wantMatched: true},
		{name: "short wide off centre clamps to 60", bizyg: 150, mensell: 110, wantCategory: "short_wide", wantConfidence: 60, wantMatched: true},
		{name: "fallback long narrow", bizyg: 120, mensell: 130, wantCategory: "long_narrow", wantConfidence: 75},
		{name: "fallback short wide", bizyg: 170, mensell: 100, wantCategory: "short_wide", wantConfidence: 75},
		{name: "fallback small", bizyg: 120, mensell: 110, wantCategory: "small", wantConfidence: 70},
		{name: "fallback large", bizyg: 170, mensell: 150, wantCategory: "large", wantConfidence: 70},
		{name: "fallback medium", bizyg: 142, mensell: 127, wantCategory: "medium", wantConfidence: 80},
		{name: "zero breadth uses unit ratio", bizyg: 0, mensell: 0, wantCategory: "small", wantConfidence: 70},
		{name: "zero breadth with length", bizyg: 0, mensell: 120, wantCategory: "small", wantConfidence: 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(measurement.MeasurementSet{BizygomaticBreadth: tt.bizyg, MentonSellion: tt.mensell})
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %d, want %d", got.Confidence, tt.wantConfidence)
			}
			if got.Matched != tt.wantMatched {
				t.Errorf("matched = %v, want %v", got.Matched, tt.wantMatched)
			}
		})
	}
}

func TestClassify_OrderDecidesOverlap(t *testing.T) {
	ps := testProfiles()
	ps[0], ps[1] = ps[1], ps[0]
	c := mustClassifier(t, ps)

	got, err := c.Classify(measurement.MeasurementSet{BizygomaticBreadth: 135, MentonSellion: 115})
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if got.Category != "medium" {
		t.Errorf("expected medium when listed first, got %q", got.Category)
	}
}

func TestClassify_ConfidenceAlwaysBounded(t *testing.T) {
	c := mustClassifier(t, testProfiles())

	for bizyg := 100.0; bizyg <= 180; bizyg += 2.5 {
		for mensell := 90.0; mensell <= 160; mensell += 2.5 {
			got, err := c.Classify(measurement.MeasurementSet{BizygomaticBreadth: bizyg, MentonSellion: mensell})
			if err != nil {
				t.Fatalf("Classify(%v, %v) error: %v", bizyg, mensell, err)
			}
			if got.Confidence < MinConfidence || got.Confidence > MaxConfidence {
				t.Fatalf("Classify(%v, %v) confidence %d out of range", bizyg, mensell, got.Confidence)
			}
			for _, p := range testProfiles() {
				if p.Contains(bizyg, mensell) {
					if !got.Matched {
						t.Fatalf("Classify(%v, %v) expected a direct match", bizyg, mensell)
					}
					break
				}
			}
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := mustClassifier(t, testProfiles())
	m := measurement.MeasurementSet{BizygomaticBreadth: 138.2, MentonSellion: 121.7}

	first, _ := c.Classify(m)
	for range 10 {
		again, _ := c.Classify(m)
		if again != first {
			t.Fatalf("Classify() not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestClassify_NonFinite(t *testing.T) {
	c := mustClassifier(t, testProfiles())

	inputs := []measurement.MeasurementSet{
		{BizygomaticBreadth: math.NaN(), MentonSellion: 120},
		{BizygomaticBreadth: 140, MentonSellion: math.Inf(1)},
	}
	for _, m := range inputs {
		if _, err := c.Classify(m); !errors.Is(err, ErrNonFiniteMeasurement) {
			t.Errorf("Classify(%+v) error = %v, want ErrNonFiniteMeasurement", m, err)
		}
	}
}

func TestNewClassifier_InvalidProfiles(t *testing.T) {
	tests := []struct {
		name string
		ps   Profiles
	}{
		{name: "empty", ps: Profiles{}},
		{name: "missing name", ps: Profiles{{Bizygomatic: Range{1, 2}, MentonSellion: Range{1, 2}}}},
		{name: "duplicate", ps: Profiles{
			{Name: "a", Bizygomatic: Range{1, 2}, MentonSellion: Range{1, 2}},
			{Name: "a", Bizygomatic: Range{1, 2}, MentonSellion: Range{1, 2}},
		}},
		{name: "inverted range", ps: Profiles{{Name: "a", Bizygomatic: Range{5, 2}, MentonSellion: Range{1, 2}}}},
		{name: "nan bound", ps: Profiles{{Name: "a", Bizygomatic: Range{math.NaN(), 2}, MentonSellion: Range{1, 2}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClassifier(tt.ps); !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("expected ErrInvalidProfile, got %v", err)
			}
		})
	}
}

func TestClassifier_ProfilesIsCopy(t *testing.T) {
	c := mustClassifier(t, testProfiles())

	ps := c.Profiles()
	ps[0].Name = "mutated"

	if p, ok := c.Profile("small"); !ok || p.Name != "small" {
		t.Error("classifier table changed through returned slice")
	}
}

func TestRange_Position(t *testing.T) {
	tests := []struct {
		r    Range
		v    float64
		want float64
	}{
		{Range{135, 145}, 140, 0.5},
		{Range{135, 145}, 135, 0},
		{Range{135, 145}, 145, 1},
		{Range{120, 120}, 120, 0.5},
	}
	for _, tt := range tests {
		if got := tt.r.Position(tt.v); got != tt.want {
			t.Errorf("%v.Position(%v) = %v, want %v", tt.r, tt.v, got, tt.want)
		}
	}
}

func TestFromConfig_EmbeddedTable(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}

	ps, err := FromConfig(cfg.Headforms)
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}
	if len(ps) != 5 || ps[0].Name != CategorySmall || ps[4].Name != CategoryShortWide {
		t.Errorf("unexpected profile order: %+v", ps)
	}
	large, ok := ps.Lookup(CategoryLarge)
	if !ok {
		t.Fatal("large profile missing")
	}
	if large.Bizygomatic != (Range{145, 160}) || large.MentonSellion != (Range{125, 135}) {
		t.Errorf("unexpected large ranges: %+v", large)
	}
	if large.Population == "" || large.Description == "" {
		t.Error("expected description and population to be loaded")
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"long_narrow": "Long Narrow",
		"short_wide":  "Short Wide",
		"medium":      "Medium",
		"":            "",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
