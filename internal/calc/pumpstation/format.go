package pumpstation

import "math"

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// roundPower keeps more digits for sub-unit values so small pumps do not show 0.00.
func roundPower(v float64) float64 {
	if v < 1 {
		return round(v, 4)
	}
	return round(v, 2)
}

func roundPoints(pts []CurvePoint) []CurvePoint {
	out := make([]CurvePoint, len(pts))
	for i, p := range pts {
		out[i] = CurvePoint{Flow: round(p.Flow, 4), Head: round(p.Head, 2), FlowLs: round(p.FlowLs, 1)}
	}
	return out
}

// Rounded returns a copy rounded for display. Computation never uses it.
func (r Result) Rounded() Result {
	out := r
	out.TotalHead = round(r.TotalHead, 2)
	out.GeometricHeight = round(r.GeometricHeight, 2)
	out.FrictionHeadLoss = round(r.FrictionHeadLoss, 2)
	out.MinorHeadLoss = round(r.MinorHeadLoss, 2)
	out.Velocity = round(r.Velocity, 2)
	out.Reynolds = round(r.Reynolds, 2)
	out.FrictionFactor = round(r.FrictionFactor, 6)
	out.TotalK = round(r.TotalK, 2)
	out.FlowRateM3s = round(r.FlowRateM3s, 6)
	out.FlowRateLs = round(r.FlowRateLs, 1)
	out.FlowRateGPM = round(r.FlowRateGPM, 1)
	out.PowerW = round(r.PowerW, 2)
	out.PowerKW = roundPower(r.PowerKW)
	out.PowerHP = roundPower(r.PowerHP)

	out.PumpCurve.Points = roundPoints(r.PumpCurve.Points)
	out.PumpCurve.ShutoffHead = round(r.PumpCurve.ShutoffHead, 2)
	out.PumpCurve.RunoutFlow = round(r.PumpCurve.RunoutFlow, 6)
	out.PumpCurve.BEPFlow = round(r.PumpCurve.BEPFlow, 6)
	out.PumpCurve.BEPHead = round(r.PumpCurve.BEPHead, 2)
	out.SystemCurve = roundPoints(r.SystemCurve)
	return out
}
