package fitting

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kozaktomas/mask-fitter/internal/catalog"
	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/headform"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

// Subject identifies the person being fitted. Both fields are optional and
// only carried through to stored records and reports.
type Subject struct {
	Name        string `json:"name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ErrInvalidSubject is returned when subject details are malformed.
var ErrInvalidSubject = errors.New("invalid subject")

var validate = validator.New()

// Validate checks the optional date of birth is a YYYY-MM-DD date.
func (s Subject) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrInvalidSubject)
	}
	return nil
}

// Reference is the stored reference headform closest to the subject's shape.
type Reference struct {
	Category string  `json:"category"`
	Distance float64 `json:"distance_mm"`
}

// Comparison sets one measurement against the matched profile's range.
type Comparison struct {
	Measurement string         `json:"measurement"`
	Value       float64        `json:"value"`
	Range       headform.Range `json:"range"`
	Within      bool           `json:"within"`
}

// Session is the result of one fitting run. It is built once by the Pipeline
// and never modified afterwards.
type Session struct {
	ID                string                     `json:"id"`
	Subject           Subject                    `json:"subject"`
	Measurements      measurement.MeasurementSet `json:"measurements"`
	Result            headform.Result            `json:"result"`
	DisplayName       string                     `json:"display_name"`
	Comparison        []Comparison               `json:"comparison,omitempty"`
	Recommendations   []catalog.Candidate        `json:"recommendations"`
	InventoryFallback bool                       `json:"inventory_fallback"`
	Nearest           *Reference                 `json:"nearest_reference,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
}

// Record converts the session into its stored form.
func (s *Session) Record() database.FitRecord {
	ids := make([]string, len(s.Recommendations))
	for i, c := range s.Recommendations {
		ids[i] = c.ID()
	}
	var nearest string
	if s.Nearest != nil {
		nearest = s.Nearest.Category
	}
	return database.FitRecord{
		ID:                s.ID,
		SubjectName:       s.Subject.Name,
		DateOfBirth:       s.Subject.DateOfBirth,
		Measurements:      s.Measurements,
		Category:          s.Result.Category,
		Confidence:        s.Result.Confidence,
		Matched:           s.Result.Matched,
		Recommendations:   ids,
		InventoryFallback: s.InventoryFallback,
		NearestReference:  nearest,
		CreatedAt:         s.CreatedAt,
	}
}

func compare(m measurement.MeasurementSet, p headform.Profile) []Comparison {
	return []Comparison{
		{
			Measurement: "bizygomatic_breadth",
			Value:       m.BizygomaticBreadth,
			Range:       p.Bizygomatic,
			Within:      p.Bizygomatic.Contains(m.BizygomaticBreadth),
		},
		{
			Measurement: "menton_sellion",
			Value:       m.MentonSellion,
			Range:       p.MentonSellion,
			Within:      p.MentonSellion.Contains(m.MentonSellion),
		},
	}
}
