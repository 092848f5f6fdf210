package pricemodel

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
)

// Pipeline is a loaded encoder plus regressor. It is immutable after New and
// safe for concurrent use.
type Pipeline struct {
	art Artifact
	enc *encoder
	reg regressor
}

// New validates art and builds a Pipeline from it.
func New(art Artifact) (*Pipeline, error) {
	enc, err := newEncoder(art.Features)
	if err != nil {
		return nil, err
	}
	reg, err := newRegressor(art.Regressor, enc.width)
	if err != nil {
		return nil, err
	}
	return &Pipeline{art: art, enc: enc, reg: reg}, nil
}

// Name returns the artifact name.
func (p *Pipeline) Name() string { return p.art.Name }

// Version returns the artifact version.
func (p *Pipeline) Version() string { return p.art.Version }

// Predict encodes a single named row and returns the regression output.
func (p *Pipeline) Predict(ctx context.Context, row map[string]any) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x, err := p.enc.transform(row)
	if err != nil {
		return 0, err
	}
	y, err := p.reg.predict(x)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, eris.New("pricemodel: prediction is not a finite number")
	}
	return y, nil
}

// Schema describes what the pipeline expects: artifact metadata and the
// feature list. The regressor parameters are omitted.
func (p *Pipeline) Schema() Artifact {
	out := Artifact{
		Name:     p.art.Name,
		Version:  p.art.Version,
		Target:   p.art.Target,
		Features: make([]FeatureSpec, len(p.art.Features)),
	}
	for i, f := range p.art.Features {
		f.Categories = append([]string(nil), f.Categories...)
		out.Features[i] = f
	}
	return out
}

// EncodedWidth returns the length of the encoded feature vector.
func (p *Pipeline) EncodedWidth() int { return p.enc.width }

// CheckVocabulary returns the values in values that the encoder for column
// would reject. A missing or numeric column rejects every value.
func (p *Pipeline) CheckVocabulary(column string, values []string) []string {
	i, ok := p.enc.byName[column]
	if !ok || p.enc.features[i].Kind != KindCategorical {
		return append([]string(nil), values...)
	}
	var unseen []string
	for _, v := range values {
		if _, ok := p.enc.index[i][v]; !ok {
			unseen = append(unseen, v)
		}
	}
	return unseen
}
