// Package inference assembles prediction records from form input and runs
// them against a price model.
package inference

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ev-msrp/internal/model"
)

// Form input names.
const (
	KeyCounty        = "county"
	KeyCity          = "city"
	KeyState         = "state"
	KeyPostalCode    = "postal_code"
	KeyModelYear     = "model_year"
	KeyMake          = "make"
	KeyModel         = "model"
	KeyEVType        = "ev_type"
	KeyCAFV          = "cafv"
	KeyElectricRange = "electric_range"
)

// Bounds are the numeric limits the form widgets enforce.
type Bounds struct {
	MinModelYear     int `yaml:"min_model_year" mapstructure:"min_model_year"`
	MaxModelYear     int `yaml:"max_model_year" mapstructure:"max_model_year"`
	MinElectricRange int `yaml:"min_electric_range" mapstructure:"min_electric_range"`
	MaxElectricRange int `yaml:"max_electric_range" mapstructure:"max_electric_range"`
}

// DefaultBounds returns the widget limits used when none are configured.
func DefaultBounds() Bounds {
	return Bounds{
		MinModelYear:     1990,
		MaxModelYear:     2035,
		MinElectricRange: 0,
		MaxElectricRange: 700,
	}
}

// FieldError reports a form value rejected at the widget boundary.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// FieldErrors collects every rejected value from one submission.
type FieldErrors []*FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Builder turns submitted form values into a model.Record.
type Builder struct {
	bounds Bounds
}

// NewBuilder creates a Builder enforcing the given bounds.
func NewBuilder(bounds Bounds) *Builder {
	return &Builder{bounds: bounds}
}

// Bounds returns the limits the builder enforces.
func (b *Builder) Bounds() Bounds {
	return b.bounds
}

// Build assembles a record from values. Free-text fields pass through
// verbatim; numeric and enumerated fields are checked against the widgets.
// On failure the returned error is FieldErrors.
func (b *Builder) Build(values url.Values) (model.Record, error) {
	var errs FieldErrors

	rec := model.Record{
		County:     values.Get(KeyCounty),
		City:       values.Get(KeyCity),
		State:      values.Get(KeyState),
		PostalCode: values.Get(KeyPostalCode),
		Make:       values.Get(KeyMake),
		Model:      values.Get(KeyModel),
	}

	year, err := boundedInt(values.Get(KeyModelYear), b.bounds.MinModelYear, b.bounds.MaxModelYear)
	if err != nil {
		errs = append(errs, &FieldError{Field: model.ColModelYear, Reason: err.Error()})
	}
	rec.ModelYear = year

	rng, err := boundedInt(values.Get(KeyElectricRange), b.bounds.MinElectricRange, b.bounds.MaxElectricRange)
	if err != nil {
		errs = append(errs, &FieldError{Field: model.ColElectricRange, Reason: err.Error()})
	}
	rec.ElectricRange = rng

	evType, err := model.ParseEVType(values.Get(KeyEVType))
	if err != nil {
		errs = append(errs, &FieldError{Field: model.ColEVType, Reason: "not one of the listed options"})
	}
	rec.EVType = evType

	cafv, err := model.ParseCAFVEligibility(values.Get(KeyCAFV))
	if err != nil {
		errs = append(errs, &FieldError{Field: model.ColCAFV, Reason: "not one of the listed options"})
	}
	rec.CAFV = cafv

	if len(errs) > 0 {
		return rec, errs
	}
	return rec, nil
}

// Values is the inverse of Build: it renders rec as form values.
func Values(rec model.Record) url.Values {
	return url.Values{
		KeyCounty:        {rec.County},
		KeyCity:          {rec.City},
		KeyState:         {rec.State},
		KeyPostalCode:    {rec.PostalCode},
		KeyModelYear:     {strconv.Itoa(rec.ModelYear)},
		KeyMake:          {rec.Make},
		KeyModel:         {rec.Model},
		KeyEVType:        {string(rec.EVType)},
		KeyCAFV:          {string(rec.CAFV)},
		KeyElectricRange: {strconv.Itoa(rec.ElectricRange)},
	}
}

func boundedInt(raw string, lo, hi int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, eris.New("is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.New("must be a whole number")
	}
	if v < lo || v > hi {
		return v, eris.Errorf("must be between %d and %d", lo, hi)
	}
	return v, nil
}
