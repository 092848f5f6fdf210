package inference

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/ev-msrp/internal/model"
)

// Predictor scores one named row. *pricemodel.Pipeline implements it.
type Predictor interface {
	Predict(ctx context.Context, row map[string]any) (float64, error)
}

// Outcome is the result of one submission: either a price or an error,
// never both.
type Outcome struct {
	Record model.Record
	Price  decimal.Decimal
	Err    error
}

// OK reports whether the prediction succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Display returns the formatted price, or "" on failure.
func (o Outcome) Display() string {
	if !o.OK() {
		return ""
	}
	return FormatPrice(o.Price.InexactFloat64())
}

// Detail returns the underlying error text, or "" on success.
func (o Outcome) Detail() string {
	if o.OK() {
		return ""
	}
	return o.Err.Error()
}

// Invoker runs records through a Predictor and converts every failure into
// an Outcome instead of returning it.
type Invoker struct {
	predictor Predictor
}

// NewInvoker creates an Invoker around p.
func NewInvoker(p Predictor) *Invoker {
	return &Invoker{predictor: p}
}

// Invoke predicts the price for rec.
func (iv *Invoker) Invoke(ctx context.Context, rec model.Record) (out Outcome) {
	out.Record = rec

	defer func() {
		if r := recover(); r != nil {
			out.Price = decimal.Zero
			out.Err = eris.Errorf("inference: predictor panicked: %v", r)
		}
		if out.Err != nil {
			zap.L().Warn("prediction failed",
				zap.String("make", rec.Make),
				zap.String("model", rec.Model),
				zap.Error(out.Err),
			)
		}
	}()

	if iv.predictor == nil {
		out.Err = eris.New("inference: no model loaded")
		return out
	}

	y, err := iv.predictor.Predict(ctx, rec.Columns())
	if err != nil {
		out.Err = err
		return out
	}

	if math.IsNaN(y) || math.IsInf(y, 0) {
		out.Err = eris.New("inference: prediction is not a finite number")
		return out
	}

	out.Price = decimal.NewFromFloat(y).Round(2)
	zap.L().Debug("prediction complete",
		zap.String("make", rec.Make),
		zap.String("model", rec.Model),
		zap.String("price", out.Price.StringFixed(2)),
	)
	return out
}
