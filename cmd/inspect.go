package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/ev-msrp/internal/model"
	"github.com/sells-group/ev-msrp/internal/pricemodel"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the model's expected inputs and check the form options against it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadModel(cfg.Model.Path)
		if err != nil {
			return err
		}
		return runInspect(os.Stdout, p, inspectFormat)
	},
}

// vocabularyReport lists form options the encoder would reject, by column.
type vocabularyReport map[string][]string

func checkFormVocabulary(p *pricemodel.Pipeline) vocabularyReport {
	evTypes := make([]string, 0, len(model.EVTypes()))
	for _, e := range model.EVTypes() {
		evTypes = append(evTypes, string(e))
	}
	cafvs := make([]string, 0, len(model.CAFVEligibilities()))
	for _, c := range model.CAFVEligibilities() {
		cafvs = append(cafvs, string(c))
	}

	report := vocabularyReport{}
	if unseen := p.CheckVocabulary(model.ColEVType, evTypes); len(unseen) > 0 {
		report[model.ColEVType] = unseen
	}
	if unseen := p.CheckVocabulary(model.ColCAFV, cafvs); len(unseen) > 0 {
		report[model.ColCAFV] = unseen
	}
	return report
}

func runInspect(w io.Writer, p *pricemodel.Pipeline, format string) error {
	schema := p.Schema()
	report := checkFormVocabulary(p)

	switch format {
	case "yaml":
		doc := struct {
			Model     pricemodel.Artifact `yaml:"model"`
			Width     int                 `yaml:"encoded_width"`
			Unmatched vocabularyReport    `yaml:"unmatched_options,omitempty"`
		}{schema, p.EncodedWidth(), report}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "inspect: encode yaml")
		}
		return enc.Close()
	case "text", "":
	default:
		return eris.Errorf("inspect: unknown format %q (want text or yaml)", format)
	}

	fmt.Fprintf(w, "Model: %s %s\n", schema.Name, schema.Version)
	if schema.Target != "" {
		fmt.Fprintf(w, "Target: %s\n", schema.Target)
	}
	fmt.Fprintf(w, "Encoded width: %d\n\n", p.EncodedWidth())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FEATURE\tKIND\tUNKNOWN\tCATEGORIES")
	for _, f := range schema.Features {
		cats := "-"
		if f.Kind == pricemodel.KindCategorical {
			cats = fmt.Sprintf("%d", len(f.Categories))
		}
		unknown := f.HandleUnknown
		if unknown == "" {
			unknown = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Kind, unknown, cats)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "inspect: flush table")
	}

	fmt.Fprintln(w)
	if len(report) == 0 {
		fmt.Fprintln(w, "All form options are known to the model.")
		return nil
	}
	for _, col := range []string{model.ColEVType, model.ColCAFV} {
		if unseen, ok := report[col]; ok {
			fmt.Fprintf(w, "%s options unknown to the model: %s\n", col, strings.Join(unseen, ", "))
		}
	}
	return nil
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "output format: text or yaml")
	rootCmd.AddCommand(inspectCmd)
}
