package pumpstation

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Empirical shape of the synthetic curve. These are display heuristics, not
// derived from any pump.
const (
	ShutoffHeadFactor = 1.33
	RunoutFlowFactor  = 2.0
	CurveSteps        = 20
)

type CurvePoint struct {
	Flow   float64 `json:"flow"`    // m³/s
	Head   float64 `json:"head"`    // m
	FlowLs float64 `json:"flow_ls"` // l/s
}

// PumpCurve is the parabola H = A - B·Q² through the shutoff head and the
// runout flow.
type PumpCurve struct {
	Points      []CurvePoint `json:"points"`
	ShutoffHead float64      `json:"shutoff_head"`
	Coefficient float64      `json:"coefficient"`
	RunoutFlow  float64      `json:"runout_flow"`
	BEPFlow     float64      `json:"bep_flow"`
	BEPHead     float64      `json:"bep_head"`
	Equation    string       `json:"equation"`
}

// SynthesizeCurve builds the three-point curve anchored at the best
// efficiency point (bepFlow in m³/s, bepHead in m).
func SynthesizeCurve(bepFlow, bepHead float64) PumpCurve {
	a := bepHead * ShutoffHeadFactor
	qMax := bepFlow * RunoutFlowFactor
	var b float64
	if qMax > 0 {
		b = a / (qMax * qMax)
	}

	c := PumpCurve{
		ShutoffHead: a,
		Coefficient: b,
		RunoutFlow:  qMax,
		BEPFlow:     bepFlow,
		BEPHead:     bepHead,
		Equation:    equation(a, b),
	}
	flows := floats.Span(make([]float64, CurveSteps+1), 0, qMax)
	c.Points = make([]CurvePoint, len(flows))
	for i, q := range flows {
		c.Points[i] = CurvePoint{Flow: q, Head: c.HeadAt(q), FlowLs: q * 1000}
	}
	return c
}

// HeadAt evaluates the curve at q m³/s.
func (c PumpCurve) HeadAt(q float64) float64 {
	return c.ShutoffHead - c.Coefficient*q*q
}

// equation formats the curve with Q in l/s.
func equation(a, b float64) string {
	return fmt.Sprintf("H = %.2f - %.4f·Q²", a, b/(1000*1000))
}

// SystemCurve samples H = staticHead + dynamicLoss·(Q/designFlow)² at flows.
func SystemCurve(staticHead, dynamicLoss, designFlow float64, flows []float64) []CurvePoint {
	out := make([]CurvePoint, len(flows))
	for i, q := range flows {
		h := staticHead
		if designFlow > 0 {
			r := q / designFlow
			h += dynamicLoss * r * r
		}
		out[i] = CurvePoint{Flow: q, Head: h, FlowLs: q * 1000}
	}
	return out
}
