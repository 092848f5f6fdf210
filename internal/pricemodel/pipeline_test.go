package pricemodel

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ev-msrp/internal/model"
)

func loadTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := Load(filepath.Join("testdata", "ev_price_model.json"))
	require.NoError(t, err)
	return p
}

func TestLoad_Valid(t *testing.T) {
	t.Parallel()
	p := loadTestPipeline(t)

	assert.Equal(t, "ev_price_model", p.Name())
	assert.Equal(t, "test-1", p.Version())
	assert.Equal(t, 19, p.EncodedWidth())
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestLoad_Corrupt(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join("testdata", "corrupt.json"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrArtifactNotFound)
	assert.Contains(t, err.Error(), "decode artifact")
}

func TestPredict_DefaultRecord(t *testing.T) {
	t.Parallel()
	p := loadTestPipeline(t)

	y, err := p.Predict(context.Background(), model.DefaultRecord().Columns())
	require.NoError(t, err)
	assert.InDelta(t, 39760.0, y, 1e-9)
}

func TestPredict_Idempotent(t *testing.T) {
	t.Parallel()
	p := loadTestPipeline(t)
	row := model.DefaultRecord().Columns()

	first, err := p.Predict(context.Background(), row)
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), row)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredict_IgnoredUnknownCategory(t *testing.T) {
	t.Parallel()
	p := loadTestPipeline(t)

	rec := model.DefaultRecord()
	rec.County = "PIERCE" // drops the KING coefficient (100)
	y, err := p.Predict(context.Background(), rec.Columns())
	require.NoError(t, err)
	assert.InDelta(t, 39660.0, y, 1e-9)
}

func TestPredict_SchemaViolations(t *testing.T) {
	t.Parallel()
	p := loadTestPipeline(t)

	tests := []struct {
		name    string
		mutate  func(row map[string]any)
		wantMsg string
	}{
		{
			name:    "missing column",
			mutate:  func(row map[string]any) { delete(row, model.ColMake) },
			wantMsg: `columns are missing: "Make"`,
		},
		{
			name:    "extra column",
			mutate:  func(row map[string]any) { row["Color"] = "red" },
			wantMsg: `unseen at fit time: "Color"`,
		},
		{
			name:    "unseen make",
			mutate:  func(row map[string]any) { row[model.ColMake] = "tesla" },
			wantMsg: `unknown category "tesla" in column "Make"`,
		},
		{
			name: "mismatched CAFV wording",
			mutate: func(row map[string]any) {
				row[model.ColCAFV] = "Clean Alternative Fuel Vehicle Eligible "
			},
			wantMsg: "unknown category",
		},
		{
			name:    "non numeric year",
			mutate:  func(row map[string]any) { row[model.ColModelYear] = "twenty" },
			wantMsg: "could not convert string to float",
		},
		{
			name:    "numeric category",
			mutate:  func(row map[string]any) { row[model.ColModel] = 3 },
			wantMsg: "expected string, got int",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			row := model.DefaultRecord().Columns()
			tt.mutate(row)
			_, err := p.Predict(context.Background(), row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestPredict_NumericCoercion(t *testing.T) {
	t.Parallel()
	p := loadTestPipeline(t)

	row := model.DefaultRecord().Columns()
	row[model.ColModelYear] = json.Number("2021")
	row[model.ColElectricRange] = 260.0
	y, err := p.Predict(context.Background(), row)
	require.NoError(t, err)
	assert.InDelta(t, 39760.0, y, 1e-9)
}

func TestPredict_CanceledContext(t *testing.T) {
	t.Parallel()
	p := loadTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Predict(ctx, model.DefaultRecord().Columns())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	num := FeatureSpec{Name: "x", Kind: KindNumeric}
	tests := []struct {
		name string
		art  Artifact
	}{
		{name: "no features", art: Artifact{Regressor: RegressorSpec{Type: RegressorLinear}}},
		{name: "duplicate feature", art: Artifact{
			Features:  []FeatureSpec{num, num},
			Regressor: RegressorSpec{Type: RegressorLinear, Coefficients: []float64{1, 1}},
		}},
		{name: "categorical without categories", art: Artifact{
			Features:  []FeatureSpec{{Name: "c", Kind: KindCategorical}},
			Regressor: RegressorSpec{Type: RegressorLinear},
		}},
		{name: "unknown kind", art: Artifact{
			Features:  []FeatureSpec{{Name: "c", Kind: "ordinal"}},
			Regressor: RegressorSpec{Type: RegressorLinear},
		}},
		{name: "coefficient count mismatch", art: Artifact{
			Features:  []FeatureSpec{num},
			Regressor: RegressorSpec{Type: RegressorLinear, Coefficients: []float64{1, 2}},
		}},
		{name: "missing regressor type", art: Artifact{
			Features: []FeatureSpec{num},
		}},
		{name: "tree child loops back", art: Artifact{
			Features: []FeatureSpec{num},
			Regressor: RegressorSpec{Type: RegressorTreeEnsemble, Trees: []Tree{{Nodes: []TreeNode{
				{Feature: 0, Left: 0, Right: 1},
				{Leaf: true},
			}}}},
		}},
		{name: "tree feature out of range", art: Artifact{
			Features: []FeatureSpec{num},
			Regressor: RegressorSpec{Type: RegressorTreeEnsemble, Trees: []Tree{{Nodes: []TreeNode{
				{Feature: 4, Left: 1, Right: 2},
				{Leaf: true},
				{Leaf: true},
			}}}},
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.art)
			assert.Error(t, err)
		})
	}
}

func TestTreeEnsemble(t *testing.T) {
	t.Parallel()

	stump := func(left, right float64) Tree {
		return Tree{Nodes: []TreeNode{
			{Feature: 0, Threshold: 300, Left: 1, Right: 2},
			{Leaf: true, Value: left},
			{Leaf: true, Value: right},
		}}
	}
	features := []FeatureSpec{{Name: model.ColElectricRange, Kind: KindNumeric}}

	boosted, err := New(Artifact{
		Features: features,
		Regressor: RegressorSpec{
			Type:         RegressorTreeEnsemble,
			BaseScore:    40000,
			LearningRate: 0.5,
			Trees:        []Tree{stump(-1000, 2000), stump(-500, 1000)},
		},
	})
	require.NoError(t, err)

	y, err := boosted.Predict(context.Background(), map[string]any{model.ColElectricRange: 260})
	require.NoError(t, err)
	assert.InDelta(t, 39250.0, y, 1e-9)

	y, err = boosted.Predict(context.Background(), map[string]any{model.ColElectricRange: 350})
	require.NoError(t, err)
	assert.InDelta(t, 41500.0, y, 1e-9)

	forest, err := New(Artifact{
		Features: features,
		Regressor: RegressorSpec{
			Type:      RegressorTreeEnsemble,
			Aggregate: "mean",
			Trees:     []Tree{stump(30000, 50000), stump(34000, 60000)},
		},
	})
	require.NoError(t, err)

	y, err = forest.Predict(context.Background(), map[string]any{model.ColElectricRange: 100})
	require.NoError(t, err)
	assert.InDelta(t, 32000.0, y, 1e-9)
}

func TestSchema_IsCopy(t *testing.T) {
	t.Parallel()
	p := loadTestPipeline(t)

	s := p.Schema()
	require.Len(t, s.Features, 10)
	s.Features[5].Categories[0] = "MUTATED"

	_, err := p.Predict(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Equal(t, "BMW", p.Schema().Features[5].Categories[0])
}

func TestCheckVocabulary(t *testing.T) {
	t.Parallel()
	p := loadTestPipeline(t)

	cafv := make([]string, 0, 3)
	for _, c := range model.CAFVEligibilities() {
		cafv = append(cafv, string(c))
	}
	assert.Empty(t, p.CheckVocabulary(model.ColCAFV, cafv))
	assert.Equal(t, []string{"Plug-in Hybrid"}, p.CheckVocabulary(model.ColEVType, []string{
		"Battery Electric Vehicle (BEV)", "Plug-in Hybrid",
	}))
	assert.Equal(t, []string{"a"}, p.CheckVocabulary(model.ColModelYear, []string{"a"}))
	assert.Equal(t, []string{"a"}, p.CheckVocabulary("Nope", []string{"a"}))
}
