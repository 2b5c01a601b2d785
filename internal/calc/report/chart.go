package report

import (
	"bytes"
	"fmt"
	"image/color"

	"PumpStation/internal/calc/pumpstation"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	pumpColor   = color.NRGBA{R: 31, G: 119, B: 180, A: 255}
	systemColor = color.NRGBA{R: 214, G: 39, B: 40, A: 255}
	dutyColor   = color.NRGBA{A: 255}
)

const chartW, chartH = 8 * vg.Inch, 5 * vg.Inch

// Chart draws the pump curve, the system curve and the operating point as a
// PNG, with flow and head in the given display units.
func Chart(res pumpstation.Result, units Units) ([]byte, error) {
	units = units.orDefault()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Operating point: %.2f %s (%.1f GPM) at %.2f %s",
		units.flow(res.FlowRateM3s), units.Flow, res.FlowRateGPM, units.head(res.TotalHead), units.Height)
	p.X.Label.Text = fmt.Sprintf("Flow (%s)", units.Flow)
	p.Y.Label.Text = fmt.Sprintf("Head (%s)", units.Height)
	p.X.Min = 0
	p.Y.Min = 0
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	pump, err := plotter.NewLine(curveXYs(res.PumpCurve.Points, units))
	if err != nil {
		return nil, err
	}
	pump.Color = pumpColor
	pump.Width = vg.Points(2)

	system, err := plotter.NewLine(curveXYs(res.SystemCurve, units))
	if err != nil {
		return nil, err
	}
	system.Color = systemColor
	system.Width = vg.Points(1.5)
	system.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}

	duty, err := plotter.NewScatter(plotter.XYs{{
		X: units.flow(res.FlowRateM3s),
		Y: units.head(res.TotalHead),
	}})
	if err != nil {
		return nil, err
	}
	duty.Color = dutyColor
	duty.Radius = vg.Points(4)
	duty.Shape = draw.CircleGlyph{}

	p.Add(pump, system, duty)
	p.Legend.Add("Pump curve", pump)
	p.Legend.Add("System curve", system)
	p.Legend.Add("Operating point", duty)

	wt, err := p.WriterTo(chartW, chartH, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func curveXYs(pts []pumpstation.CurvePoint, units Units) plotter.XYs {
	xy := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xy[i].X = units.flow(pt.Flow)
		xy[i].Y = units.head(pt.Head)
	}
	return xy
}
