package pricemodel

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// encoder turns a named row into the dense vector the regressor was fit on.
// Numeric columns contribute one standardized slot, categorical columns a
// one-hot block in category order.
type encoder struct {
	features []FeatureSpec
	offsets  []int
	index    []map[string]int
	byName   map[string]int
	width    int
}

func newEncoder(features []FeatureSpec) (*encoder, error) {
	if len(features) == 0 {
		return nil, eris.New("pricemodel: artifact has no features")
	}

	e := &encoder{
		features: features,
		offsets:  make([]int, len(features)),
		index:    make([]map[string]int, len(features)),
		byName:   make(map[string]int, len(features)),
	}

	for i, f := range features {
		if f.Name == "" {
			return nil, eris.Errorf("pricemodel: feature %d has no name", i)
		}
		if _, dup := e.byName[f.Name]; dup {
			return nil, eris.Errorf("pricemodel: duplicate feature %q", f.Name)
		}
		e.byName[f.Name] = i
		e.offsets[i] = e.width

		switch f.Kind {
		case KindNumeric:
			e.width++
		case KindCategorical:
			if len(f.Categories) == 0 {
				return nil, eris.Errorf("pricemodel: categorical feature %q has no categories", f.Name)
			}
			switch f.HandleUnknown {
			case "", HandleUnknownError, HandleUnknownIgnore:
			default:
				return nil, eris.Errorf("pricemodel: feature %q: unsupported handle_unknown %q", f.Name, f.HandleUnknown)
			}
			idx := make(map[string]int, len(f.Categories))
			for j, c := range f.Categories {
				idx[c] = j
			}
			e.index[i] = idx
			e.width += len(f.Categories)
		default:
			return nil, eris.Errorf("pricemodel: feature %q: unsupported kind %q", f.Name, f.Kind)
		}
	}
	return e, nil
}

// transform validates row against the fitted schema and encodes it.
func (e *encoder) transform(row map[string]any) ([]float64, error) {
	if err := e.checkColumns(row); err != nil {
		return nil, err
	}

	x := make([]float64, e.width)
	for i, f := range e.features {
		raw := row[f.Name]
		switch f.Kind {
		case KindNumeric:
			v, err := toFloat(raw)
			if err != nil {
				return nil, eris.Wrapf(err, "pricemodel: column %q", f.Name)
			}
			if f.Scale != 0 {
				v = (v - f.Mean) / f.Scale
			}
			x[e.offsets[i]] = v
		case KindCategorical:
			s, ok := raw.(string)
			if !ok {
				return nil, eris.Errorf("pricemodel: column %q: expected string, got %T", f.Name, raw)
			}
			j, seen := e.index[i][s]
			if !seen {
				if f.HandleUnknown == HandleUnknownIgnore {
					continue
				}
				return nil, eris.Errorf("pricemodel: found unknown category %q in column %q", s, f.Name)
			}
			x[e.offsets[i]+j] = 1
		}
	}
	return x, nil
}

func (e *encoder) checkColumns(row map[string]any) error {
	var missing, extra []string
	for _, f := range e.features {
		if _, ok := row[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	for name := range row {
		if _, ok := e.byName[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	switch {
	case len(missing) > 0:
		return eris.Errorf("pricemodel: columns are missing: %s", quoteJoin(missing))
	case len(extra) > 0:
		return eris.Errorf("pricemodel: feature names unseen at fit time: %s", quoteJoin(extra))
	}
	return nil
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, eris.Wrapf(err, "could not convert %q to float", x.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, eris.Errorf("could not convert string to float: %q", x)
		}
		f = parsed
	default:
		return 0, eris.Errorf("could not convert %T to float", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, eris.Errorf("input contains NaN or infinity")
	}
	return f, nil
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
