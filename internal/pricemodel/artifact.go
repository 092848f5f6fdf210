// Package pricemodel loads a serialized price regression pipeline and runs
// single-row predictions against it.
package pricemodel

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/rotisserie/eris"
)

// ErrArtifactNotFound is returned by Load when nothing exists at the artifact path.
var ErrArtifactNotFound = eris.New("pricemodel: artifact not found")

// Feature kinds.
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

// Unknown-category handling for categorical features.
const (
	HandleUnknownError  = "error"
	HandleUnknownIgnore = "ignore"
)

// Regressor types.
const (
	RegressorLinear       = "linear"
	RegressorTreeEnsemble = "tree_ensemble"
)

// Artifact is the on-disk form of a trained pipeline.
type Artifact struct {
	Name      string        `json:"name" yaml:"name"`
	Version   string        `json:"version" yaml:"version"`
	Target    string        `json:"target" yaml:"target"`
	Features  []FeatureSpec `json:"features" yaml:"features"`
	Regressor RegressorSpec `json:"regressor" yaml:"-"`
}

// FeatureSpec describes one input column and how it is encoded.
type FeatureSpec struct {
	Name          string   `json:"name" yaml:"name"`
	Kind          string   `json:"kind" yaml:"kind"`
	Categories    []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	HandleUnknown string   `json:"handle_unknown,omitempty" yaml:"handle_unknown,omitempty"`
	Mean          float64  `json:"mean,omitempty" yaml:"mean,omitempty"`
	Scale         float64  `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// RegressorSpec holds the fitted estimator.
type RegressorSpec struct {
	Type string `json:"type"`

	// linear
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`

	// tree_ensemble
	BaseScore    float64 `json:"base_score,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	Aggregate    string  `json:"aggregate,omitempty"`
	Trees        []Tree  `json:"trees,omitempty"`
}

// Tree is a flattened regression tree. Node 0 is the root.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is one split or leaf. Split nodes send x[Feature] <= Threshold left.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// Load reads the artifact at path and builds a ready-to-use Pipeline.
func Load(path string) (*Pipeline, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrArtifactNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "pricemodel: read artifact %s", path)
	}

	var art Artifact
	if err := json.Unmarshal(payload, &art); err != nil {
		return nil, eris.Wrapf(err, "pricemodel: decode artifact %s", path)
	}

	return New(art)
}
