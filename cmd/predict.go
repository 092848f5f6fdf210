package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ev-msrp/internal/inference"
	"github.com/sells-group/ev-msrp/internal/model"
	"github.com/sells-group/ev-msrp/internal/web"
)

// predictFlags maps form keys to their flag names.
var predictFlags = []struct {
	key, flag, usage string
}{
	{inference.KeyCounty, "county", model.ColCounty},
	{inference.KeyCity, "city", model.ColCity},
	{inference.KeyState, "state", model.ColState},
	{inference.KeyPostalCode, "postal-code", model.ColPostalCode},
	{inference.KeyModelYear, "model-year", model.ColModelYear},
	{inference.KeyMake, "make", model.ColMake},
	{inference.KeyModel, "model", model.ColModel},
	{inference.KeyEVType, "ev-type", model.ColEVType},
	{inference.KeyCAFV, "cafv", model.ColCAFV},
	{inference.KeyElectricRange, "electric-range", model.ColElectricRange},
}

var predictValues = map[string]*string{}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the Base MSRP for one vehicle",
	Example: `  ev-msrp predict --make BMW --model X5 --model-year 2022 \
    --ev-type "Plug-in Hybrid Electric Vehicle (PHEV)" --electric-range 30`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadModel(cfg.Model.Path)
		if err != nil {
			return err
		}

		values := url.Values{}
		for key, v := range predictValues {
			values.Set(key, *v)
		}

		return runPredict(cmd.Context(), os.Stdout, inference.NewBuilder(cfg.Form), inference.NewInvoker(p), values)
	},
}

// runPredict builds a record from values, prints the input preview, and
// prints the predicted price or the failure.
func runPredict(ctx context.Context, w io.Writer, b *inference.Builder, inv *inference.Invoker, values url.Values) error {
	rec, err := b.Build(values)
	if err != nil {
		var fe inference.FieldErrors
		if errors.As(err, &fe) {
			fmt.Fprintln(w, web.MsgInvalidInput)
			for _, e := range fe {
				fmt.Fprintf(w, "  %s\n", e.Error())
			}
		}
		return eris.Wrap(err, "predict")
	}

	fmt.Fprintln(w, "Input Data Preview")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range rec.Cells() {
		fmt.Fprintf(tw, "%s\t%v\n", c.Name, c.Value)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "predict: flush preview")
	}
	fmt.Fprintln(w)

	out := inv.Invoke(ctx, rec)
	if !out.OK() {
		fmt.Fprintln(w, web.MsgPredictionFailed)
		fmt.Fprintln(w, out.Detail())
		return eris.Wrap(out.Err, "predict")
	}

	fmt.Fprintf(w, "%s %s\n", web.MsgPredicted, out.Display())
	return nil
}

func init() {
	// Numeric fields stay strings so range errors read the same as the form.
	def := inference.Values(model.DefaultRecord())
	for _, f := range predictFlags {
		v := new(string)
		predictValues[f.key] = v
		predictCmd.Flags().StringVar(v, f.flag, def.Get(f.key), f.usage)
	}
	rootCmd.AddCommand(predictCmd)
}
