package model

import (
	"strconv"

	"github.com/rotisserie/eris"
)

// Column names expected by the trained encoder. Spelling and case must match
// the training data exactly.
const (
	ColCounty        = "County"
	ColCity          = "City"
	ColState         = "State"
	ColPostalCode    = "Postal Code"
	ColModelYear     = "Model Year"
	ColMake          = "Make"
	ColModel         = "Model"
	ColEVType        = "Electric Vehicle Type"
	ColCAFV          = "Clean Alternative Fuel Vehicle (CAFV) Eligibility"
	ColElectricRange = "Electric Range"
)

// ErrUnknownCategory is returned when a value falls outside a closed enumeration.
var ErrUnknownCategory = eris.New("model: unknown category")

// EVType is the closed "Electric Vehicle Type" enumeration.
type EVType string

// Electric vehicle types.
const (
	EVTypeBEV  EVType = "Battery Electric Vehicle (BEV)"
	EVTypePHEV EVType = "Plug-in Hybrid Electric Vehicle (PHEV)"
)

// EVTypes returns every EVType in display order.
func EVTypes() []EVType {
	return []EVType{EVTypeBEV, EVTypePHEV}
}

// ParseEVType returns the EVType whose wording equals s.
func ParseEVType(s string) (EVType, error) {
	for _, t := range EVTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", eris.Wrapf(ErrUnknownCategory, "electric vehicle type %q", s)
}

// CAFVEligibility is the closed CAFV eligibility enumeration.
type CAFVEligibility string

// CAFV eligibility categories, worded as the encoder was fit on them.
const (
	CAFVEligible       CAFVEligibility = "Clean Alternative Fuel Vehicle Eligible"
	CAFVUnknown        CAFVEligibility = "Eligibility unknown as battery range has not been researched"
	CAFVNotEligibleLow CAFVEligibility = "Not eligible due to low battery range"
)

// CAFVEligibilities returns every CAFVEligibility in display order.
func CAFVEligibilities() []CAFVEligibility {
	return []CAFVEligibility{CAFVEligible, CAFVUnknown, CAFVNotEligibleLow}
}

// ParseCAFVEligibility returns the CAFVEligibility whose wording equals s.
func ParseCAFVEligibility(s string) (CAFVEligibility, error) {
	for _, c := range CAFVEligibilities() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", eris.Wrapf(ErrUnknownCategory, "CAFV eligibility %q", s)
}

// Record is a single prediction request row. It is built fresh for every
// submission and never stored.
type Record struct {
	County        string          `json:"County"`
	City          string          `json:"City"`
	State         string          `json:"State"`
	PostalCode    string          `json:"Postal Code"`
	ModelYear     int             `json:"Model Year"`
	Make          string          `json:"Make"`
	Model         string          `json:"Model"`
	EVType        EVType          `json:"Electric Vehicle Type"`
	CAFV          CAFVEligibility `json:"Clean Alternative Fuel Vehicle (CAFV) Eligibility"`
	ElectricRange int             `json:"Electric Range"`
}

// DefaultRecord returns the values the form starts with.
func DefaultRecord() Record {
	return Record{
		County:        "KING",
		City:          "SEATTLE",
		State:         "WA",
		PostalCode:    "98109",
		ModelYear:     2021,
		Make:          "TESLA",
		Model:         "MODEL 3",
		EVType:        EVTypeBEV,
		CAFV:          CAFVEligible,
		ElectricRange: 260,
	}
}

// FieldNames returns the ten column names in canonical order.
func FieldNames() []string {
	return []string{
		ColCounty,
		ColCity,
		ColState,
		ColPostalCode,
		ColModelYear,
		ColMake,
		ColModel,
		ColEVType,
		ColCAFV,
		ColElectricRange,
	}
}

// Columns returns the record as the named-field mapping the model consumes.
// Text columns are strings and numeric columns are ints.
func (r Record) Columns() map[string]any {
	return map[string]any{
		ColCounty:        r.County,
		ColCity:          r.City,
		ColState:         r.State,
		ColPostalCode:    r.PostalCode,
		ColModelYear:     r.ModelYear,
		ColMake:          r.Make,
		ColModel:         r.Model,
		ColEVType:        string(r.EVType),
		ColCAFV:          string(r.CAFV),
		ColElectricRange: r.ElectricRange,
	}
}

// Cell is one column of the preview table.
type Cell struct {
	Name  string
	Value string
}

// Cells returns the record as ordered display cells.
func (r Record) Cells() []Cell {
	cols := r.Columns()
	cells := make([]Cell, 0, len(cols))
	for _, name := range FieldNames() {
		var v string
		switch x := cols[name].(type) {
		case string:
			v = x
		case int:
			v = strconv.Itoa(x)
		}
		cells = append(cells, Cell{Name: name, Value: v})
	}
	return cells
}
