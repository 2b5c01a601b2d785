package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"PumpStation/internal/calc/premium/importer"
	"PumpStation/internal/calc/pumpstation"
	"PumpStation/internal/calc/report"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func calcCmd(log logrus.FieldLogger) *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Solve the operating point for a YAML input file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := loadInput(file)
			if err != nil {
				return err
			}
			res, err := pumpstation.NewSolver(log).Solve(in.Input)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), res.Rounded(), asJSON)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "input YAML file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.MarkFlagRequired("file")
	return cmd
}

func reportCmd(log logrus.FieldLogger) *cobra.Command {
	var (
		file, out       string
		flowUnit, hUnit string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a PDF report for a YAML input file",
		RunE: func(_ *cobra.Command, _ []string) error {
			in, err := loadInput(file)
			if err != nil {
				return err
			}
			res, err := pumpstation.NewSolver(log).Solve(in.Input)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			units := report.Units{Flow: flowUnit, Height: hUnit}
			if err := report.Render(f, in, res, units, time.Now()); err != nil {
				f.Close()
				return err
			}
			log.WithField("path", out).Info("report written")
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "input YAML file")
	cmd.Flags().StringVarP(&out, "out", "o", "pumpstation_report.pdf", "output PDF path")
	cmd.Flags().StringVar(&flowUnit, "flow-unit", report.DefaultUnits.Flow, "display unit for flow")
	cmd.Flags().StringVar(&hUnit, "height-unit", report.DefaultUnits.Height, "display unit for head")
	cmd.MarkFlagRequired("file")
	return cmd
}

func templateCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the spreadsheet import template",
		RunE: func(_ *cobra.Command, _ []string) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := importer.Template(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "pumpstation_inputs.xlsx", "output xlsx path")
	return cmd
}

func loadInput(path string) (report.Input, error) {
	var in report.Input
	data, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}

func writeResult(w io.Writer, res pumpstation.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total head\t%.2f m\n", res.TotalHead)
	fmt.Fprintf(tw, "  geometric\t%.2f m\n", res.GeometricHeight)
	fmt.Fprintf(tw, "  friction\t%.2f m\n", res.FrictionHeadLoss)
	fmt.Fprintf(tw, "  fittings\t%.2f m (K = %.2f)\n", res.MinorHeadLoss, res.TotalK)
	fmt.Fprintf(tw, "Velocity\t%.2f m/s\n", res.Velocity)
	fmt.Fprintf(tw, "Reynolds\t%.0f (%s)\n", res.Reynolds, res.Regime)
	fmt.Fprintf(tw, "Friction factor\t%.6f\n", res.FrictionFactor)
	fmt.Fprintf(tw, "Flow\t%.1f l/s (%.1f GPM)\n", res.FlowRateLs, res.FlowRateGPM)
	fmt.Fprintf(tw, "Power\t%g kW (%g HP)\n", res.PowerKW, res.PowerHP)
	fmt.Fprintf(tw, "Pump curve\t%s\n", res.PumpCurve.Equation)
	for _, wn := range res.Warnings {
		fmt.Fprintf(tw, "Warning\t%s: %s\n", wn.Code, wn.Message)
	}
	return tw.Flush()
}
