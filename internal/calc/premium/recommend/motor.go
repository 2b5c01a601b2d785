// Package recommend selects a standard electric motor for a pump duty.
package recommend

import (
	"errors"
	"fmt"

	"PumpStation/internal/calc/pumpstation"
)

// DefaultServiceFactor is the margin applied to shaft power before rating
// selection.
const DefaultServiceFactor = 1.15

// StandardRatingsKW are IEC 60072 motor output ratings.
var StandardRatingsKW = []float64{
	0.37, 0.55, 0.75, 1.1, 1.5, 2.2, 3, 4, 5.5, 7.5,
	11, 15, 18.5, 22, 30, 37, 45, 55, 75, 90,
	110, 132, 160, 200, 250, 315, 355, 400, 450, 500,
	560, 630, 710, 800, 900, 1000,
}

var ErrTooLarge = errors.New("recommend: required power exceeds the largest standard rating")

type Input struct {
	pumpstation.Input `yaml:",inline"`

	ServiceFactor float64 `json:"service_factor" yaml:"service_factor"` // 0 means DefaultServiceFactor
}

type Result struct {
	ShaftPowerKW  float64 `json:"shaft_power_kw"`
	ServiceFactor float64 `json:"service_factor"`
	RequiredKW    float64 `json:"required_kw"`
	MotorKW       float64 `json:"motor_kw"`
	MotorHP       float64 `json:"motor_hp"`
	LoadFactor    float64 `json:"load_factor"` // shaft power / motor rating
	TotalHead     float64 `json:"total_head"`

	Warnings []pumpstation.PhysicalWarning `json:"warnings,omitempty"`
}

// Motor solves in and returns the smallest standard rating at or above the
// shaft power times the service factor.
func Motor(s *pumpstation.Solver, in Input) (Result, error) {
	sf := in.ServiceFactor
	switch {
	case sf == 0:
		sf = DefaultServiceFactor
	case !(sf >= 1):
		return Result{}, &pumpstation.ValidationError{Field: "service_factor", Reason: fmt.Sprintf("must be >= 1, got %v", sf)}
	}
	if s == nil {
		s = pumpstation.NewSolver(nil)
	}
	res, err := s.Solve(in.Input)
	if err != nil {
		return Result{}, err
	}

	required := res.PowerKW * sf
	rating, ok := Rating(required)
	if !ok {
		return Result{}, fmt.Errorf("%w: %.1f kW", ErrTooLarge, required)
	}
	return Result{
		ShaftPowerKW:  res.PowerKW,
		ServiceFactor: sf,
		RequiredKW:    required,
		MotorKW:       rating,
		MotorHP:       rating * pumpstation.KWToHP,
		LoadFactor:    res.PowerKW / rating,
		TotalHead:     res.TotalHead,
		Warnings:      res.Warnings,
	}, nil
}

// Rating returns the smallest standard rating >= kw.
func Rating(kw float64) (float64, bool) {
	for _, r := range StandardRatingsKW {
		if r >= kw {
			return r, true
		}
	}
	return 0, false
}
