// Package report renders a pumping-station calculation as a PDF document.
package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"PumpStation/internal/calc/pumpstation"

	"github.com/phpdave11/gofpdf"
)

// Input is a calculation request plus the fields that only appear on paper.
type Input struct {
	ProjectName     string `json:"project_name" yaml:"project_name"`
	ProjectLocation string `json:"project_location" yaml:"project_location"`
	Author          string `json:"author" yaml:"author"`
	Notes           string `json:"notes" yaml:"notes"`

	pumpstation.Input `yaml:",inline"`
}

// Units selects the display units for flow and head.
type Units struct {
	Flow   string
	Height string
}

// DefaultUnits are used when a user has no stored preference.
var DefaultUnits = Units{Flow: pumpstation.UnitLitresPerSecond, Height: pumpstation.UnitMetre}

func (u Units) orDefault() Units {
	if !pumpstation.ValidUnit(pumpstation.Flow, u.Flow) {
		u.Flow = DefaultUnits.Flow
	}
	if !pumpstation.ValidUnit(pumpstation.Height, u.Height) {
		u.Height = DefaultUnits.Height
	}
	return u
}

func (u Units) flow(m3s float64) float64 {
	v, _ := pumpstation.FromSI(m3s, u.Flow, pumpstation.Flow)
	return v
}

func (u Units) head(m float64) float64 {
	v, _ := pumpstation.FromSI(m, u.Height, pumpstation.Height)
	return v
}

const (
	chartName   = "pump-chart"
	pageMargin  = 15.0
	labelWidth  = 80.0
	valueWidth  = 100.0
	rowHeight   = 7.0
	chartWidth  = 180.0
	chartHeight = 112.5
)

// Render writes the report for in and its result res to w. The date printed
// on the report is now.
func Render(w io.Writer, in Input, res pumpstation.Result, units Units, now time.Time) error {
	units = units.orDefault()
	chart, err := Chart(res, units)
	if err != nil {
		return fmt.Errorf("report: chart: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	title := in.ProjectName
	if title == "" {
		title = "Pumping Station"
	}
	pdf.SetTitle(tr(title), false)
	pdf.SetAuthor(tr(in.Author), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Pumping Station Hydraulic Report"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Project: %s", title)), "", 1, "L", false, 0, "")
	if in.ProjectLocation != "" {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Location: %s", in.ProjectLocation)), "", 1, "L", false, 0, "")
	}
	if in.Author != "" {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Prepared by: %s", in.Author)), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", now.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(name string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 9, tr(name), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}
	row := func(label, value string) {
		pdf.CellFormat(labelWidth, rowHeight, tr(label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(valueWidth, rowHeight, tr(value), "1", 1, "L", false, 0, "")
	}

	section("Input Parameters")
	row("Geometric height", fmt.Sprintf("%g %s", in.GeometricHeight, in.GeometricHeightUnit))
	row("Design flow rate", fmt.Sprintf("%g %s", in.FlowRate, in.FlowRateUnit))
	row("Pipe length", fmt.Sprintf("%g %s", in.PipeLength, in.PipeLengthUnit))
	row("Pipe diameter", fmt.Sprintf("%g %s", in.PipeDiameter, in.PipeDiameterUnit))
	row("Pipe material", fmt.Sprintf("%s (roughness %g mm)", in.PipeMaterial, res.RoughnessMM))
	row("Pump efficiency", fmt.Sprintf("%.1f %%", in.PumpEfficiency*100))
	for _, k := range pumpstation.FittingKinds() {
		if n := in.Count(k); n > 0 {
			row(fittingLabel(k), fmt.Sprintf("%d (K = %g each)", n, k.K()))
		}
	}
	pdf.Ln(4)

	r := res.Rounded()
	section("Hydraulic Results")
	row("Total dynamic head", fmt.Sprintf("%.2f %s", units.head(res.TotalHead), units.Height))
	row("Friction head loss", fmt.Sprintf("%.2f %s", units.head(res.FrictionHeadLoss), units.Height))
	row("Minor head loss", fmt.Sprintf("%.2f %s (sum K = %.2f)", units.head(res.MinorHeadLoss), units.Height, r.TotalK))
	row("Flow velocity", fmt.Sprintf("%.2f m/s", r.Velocity))
	row("Reynolds number", fmt.Sprintf("%.0f (%s)", res.Reynolds, res.Regime))
	row("Friction factor", fmt.Sprintf("%.6f", r.FrictionFactor))
	row("Flow rate", fmt.Sprintf("%.2f %s (%.1f GPM)", units.flow(res.FlowRateM3s), units.Flow, r.FlowRateGPM))
	pdf.Ln(4)

	section("Power Requirements")
	row("Hydraulic shaft power", fmt.Sprintf("%g kW", r.PowerKW))
	row("Horsepower", fmt.Sprintf("%g HP", r.PowerHP))
	row("Pump curve", res.PumpCurve.Equation+" (H in m, Q in l/s)")
	pdf.Ln(4)

	pdf.AddPage()
	section("Pump and System Curves")
	pdf.RegisterImageOptionsReader(chartName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(chart))
	y := pdf.GetY()
	pdf.ImageOptions(chartName, pageMargin, y, chartWidth, chartHeight, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetY(y + chartHeight + 4)

	section("Technical Notes")
	for _, note := range technicalNotes(res) {
		pdf.MultiCell(0, 6, tr("- "+note), "", "L", false)
	}
	if in.Notes != "" {
		pdf.MultiCell(0, 6, tr(in.Notes), "", "L", false)
	}
	if len(res.Warnings) > 0 {
		pdf.Ln(2)
		section("Warnings")
		for _, wn := range res.Warnings {
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("[%s] %s", wn.Code, wn.Message)), "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return pdf.Output(w)
}

func fittingLabel(k pumpstation.FittingKind) string {
	switch k {
	case pumpstation.ValveGate:
		return "Gate valves"
	case pumpstation.ValveButterfly:
		return "Butterfly valves"
	case pumpstation.ValveCheck:
		return "Check valves"
	case pumpstation.ValveGlobe:
		return "Globe valves"
	case pumpstation.Elbow90:
		return "90° elbows"
	case pumpstation.Elbow45:
		return "45° elbows"
	}
	return k.String()
}

func technicalNotes(res pumpstation.Result) []string {
	var notes []string
	switch {
	case res.Velocity < pumpstation.MinVelocity:
		notes = append(notes, fmt.Sprintf("Velocity %.2f m/s is below the %.1f m/s self-cleansing limit.", res.Velocity, pumpstation.MinVelocity))
	case res.Velocity > pumpstation.MaxVelocity:
		notes = append(notes, fmt.Sprintf("Velocity %.2f m/s is above the %.1f m/s recommended maximum.", res.Velocity, pumpstation.MaxVelocity))
	default:
		notes = append(notes, fmt.Sprintf("Velocity %.2f m/s is within the recommended %.1f-%.1f m/s range.", res.Velocity, pumpstation.MinVelocity, pumpstation.MaxVelocity))
	}
	switch res.Regime {
	case pumpstation.Laminar:
		notes = append(notes, "Flow is laminar; friction factor is 64/Re.")
	case pumpstation.Transitional:
		notes = append(notes, "Flow is transitional; the turbulent friction factor is applied.")
	default:
		notes = append(notes, "Flow is turbulent; friction factor from the Swamee-Jain equation.")
	}
	notes = append(notes, fmt.Sprintf("Pump curve synthesized from the duty point: shutoff head %.2f m at zero flow, runout at twice the design flow.", res.PumpCurve.ShutoffHead))
	return notes
}
