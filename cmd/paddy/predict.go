package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smartpaddy/advisor/internal/logging"
	"github.com/smartpaddy/advisor/internal/predict"
	"github.com/smartpaddy/advisor/internal/report"
	"github.com/smartpaddy/advisor/pkg/domain"
)

// markdownWidth is the wrap width for rendered Markdown reports.
const markdownWidth = 100

// predictFlags maps each form field to its flag.
var predictFlags = [predict.NumFields]string{
	predict.FieldTemperature: "temperature",
	predict.FieldSoilPH:      "soil-ph",
	predict.FieldRainfall:    "rainfall",
	predict.FieldFieldArea:   "field-area",
	predict.FieldHumidity:    "humidity",
}

func (a *App) newPredictCommand() *cobra.Command {
	var (
		form   predict.Form
		output string
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Get a cultivation plan for field measurements",
		Example: `  paddy predict --temperature 28 --soil-ph 6.5 --rainfall 120 --field-area 0.5 --humidity 75
  paddy predict ... -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			if _, err := a.requireRole(""); err != nil {
				return err
			}

			var orch predict.Orchestrator
			sub, err := orch.Begin(form)
			if err != nil {
				return err
			}
			a.logger.Debug().Stringer("submission", sub.ID).Msg("submitting prediction")

			orch.Apply(predict.Run(cmd.Context(), a.api, sub))
			if orch.State() == predict.Failed {
				return a.remoteError(orch.Err())
			}
			view, _ := orch.View()
			return writeView(cmd.OutOrStdout(), view, format)
		},
	}

	for f := predict.Field(0); f < predict.NumFields; f++ {
		cmd.Flags().StringVar(&form[f], predictFlags[f], "", f.Label())
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, markdown, json, yaml")
	return cmd
}

// writeView renders Markdown through glamour when w is a terminal and writes
// every other format as is.
func writeView(w io.Writer, view domain.StageView, format report.Format) error {
	if format == report.FormatMarkdown && logging.IsTerminal(w) {
		out, err := report.RenderMarkdown(report.Markdown(view), markdownWidth, true)
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	}
	return report.Write(w, view, format)
}
