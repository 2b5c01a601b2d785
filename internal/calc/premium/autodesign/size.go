// Package autodesign picks a discharge pipe diameter for a duty point.
package autodesign

import (
	"errors"
	"fmt"

	"PumpStation/internal/calc/pumpstation"
)

// DefaultMaxVelocity is the design velocity ceiling in m/s.
const DefaultMaxVelocity = 2.0

// StandardDiametersMM are nominal inner diameters tried in ascending order.
var StandardDiametersMM = []float64{
	50, 65, 80, 100, 125, 150, 200, 250, 300, 350,
	400, 450, 500, 600, 700, 800, 900, 1000,
}

var ErrNoDiameter = errors.New("autodesign: no standard diameter keeps velocity within the limit")

// Input is a calculation request whose pipe diameter is chosen by Size. Any
// diameter given in the request is ignored.
type Input struct {
	pumpstation.Input `yaml:",inline"`

	MaxVelocity float64 `json:"max_velocity" yaml:"max_velocity"` // m/s, 0 means DefaultMaxVelocity
}

type Candidate struct {
	DiameterMM float64 `json:"diameter_mm"`
	Velocity   float64 `json:"velocity"`
	TotalHead  float64 `json:"total_head"`
	PowerKW    float64 `json:"power_kw"`
}

type Result struct {
	DiameterMM  float64            `json:"diameter_mm"`
	MaxVelocity float64            `json:"max_velocity"`
	Candidates  []Candidate        `json:"candidates"`
	Result      pumpstation.Result `json:"result"`
	Notes       string             `json:"notes"`
}

// Size returns the smallest standard diameter whose velocity does not exceed
// the limit, solved at that diameter. Candidates lists every diameter tried.
func Size(s *pumpstation.Solver, in Input) (Result, error) {
	maxV := in.MaxVelocity
	switch {
	case maxV == 0:
		maxV = DefaultMaxVelocity
	case !(maxV > 0):
		return Result{}, &pumpstation.ValidationError{Field: "max_velocity", Reason: fmt.Sprintf("must be > 0, got %v", maxV)}
	}
	if s == nil {
		s = pumpstation.NewSolver(nil)
	}

	out := Result{MaxVelocity: maxV}
	for _, d := range StandardDiametersMM {
		trial := in.Input
		trial.PipeDiameter = d
		trial.PipeDiameterUnit = pumpstation.UnitMillimetre
		res, err := s.Solve(trial)
		if err != nil {
			return Result{}, err
		}
		out.Candidates = append(out.Candidates, Candidate{
			DiameterMM: d,
			Velocity:   res.Velocity,
			TotalHead:  res.TotalHead,
			PowerKW:    res.PowerKW,
		})
		if res.Velocity <= maxV {
			out.DiameterMM = d
			out.Result = res
			out.Notes = fmt.Sprintf("DN%g keeps velocity at %.2f m/s (limit %.1f m/s).", d, res.Velocity, maxV)
			return out, nil
		}
	}
	return Result{}, ErrNoDiameter
}
