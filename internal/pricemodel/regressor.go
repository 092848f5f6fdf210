package pricemodel

import (
	"github.com/rotisserie/eris"
)

type regressor interface {
	predict(x []float64) (float64, error)
}

func newRegressor(spec RegressorSpec, width int) (regressor, error) {
	switch spec.Type {
	case RegressorLinear:
		if len(spec.Coefficients) != width {
			return nil, eris.Errorf("pricemodel: linear regressor has %d coefficients, encoder produces %d columns",
				len(spec.Coefficients), width)
		}
		return &linear{intercept: spec.Intercept, coef: spec.Coefficients}, nil
	case RegressorTreeEnsemble:
		return newEnsemble(spec, width)
	case "":
		return nil, eris.New("pricemodel: regressor type is required")
	default:
		return nil, eris.Errorf("pricemodel: unsupported regressor type %q", spec.Type)
	}
}

type linear struct {
	intercept float64
	coef      []float64
}

func (l *linear) predict(x []float64) (float64, error) {
	if len(x) != len(l.coef) {
		return 0, eris.Errorf("pricemodel: expected %d columns, got %d", len(l.coef), len(x))
	}
	y := l.intercept
	for i, v := range x {
		y += l.coef[i] * v
	}
	return y, nil
}

type ensemble struct {
	base  float64
	rate  float64
	mean  bool
	trees []Tree
}

func newEnsemble(spec RegressorSpec, width int) (*ensemble, error) {
	if len(spec.Trees) == 0 {
		return nil, eris.New("pricemodel: tree ensemble has no trees")
	}
	for t, tree := range spec.Trees {
		if err := validateTree(tree, width); err != nil {
			return nil, eris.Wrapf(err, "pricemodel: tree %d", t)
		}
	}

	e := &ensemble{base: spec.BaseScore, rate: spec.LearningRate, trees: spec.Trees}
	switch spec.Aggregate {
	case "", "sum":
		if e.rate == 0 {
			e.rate = 1
		}
	case "mean":
		e.mean = true
	default:
		return nil, eris.Errorf("pricemodel: unsupported aggregate %q", spec.Aggregate)
	}
	return e, nil
}

func validateTree(tree Tree, width int) error {
	if len(tree.Nodes) == 0 {
		return eris.New("no nodes")
	}
	for i, n := range tree.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return eris.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		// Children must come after their parent so evaluation always terminates.
		if n.Left <= i || n.Left >= len(tree.Nodes) || n.Right <= i || n.Right >= len(tree.Nodes) {
			return eris.Errorf("node %d: invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func (e *ensemble) predict(x []float64) (float64, error) {
	var sum float64
	for _, tree := range e.trees {
		v, err := walk(tree, x)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	if e.mean {
		return e.base + sum/float64(len(e.trees)), nil
	}
	return e.base + e.rate*sum, nil
}

func walk(tree Tree, x []float64) (float64, error) {
	idx := 0
	for {
		node := tree.Nodes[idx]
		if node.Leaf {
			return node.Value, nil
		}
		if node.Feature >= len(x) {
			return 0, eris.New("pricemodel: feature index out of range")
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}
