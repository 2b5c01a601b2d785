package pumpstation

import (
	"fmt"
	"math"
)

// Dimension selects the unit family a value belongs to.
type Dimension int

const (
	Height Dimension = iota
	Flow
	PipeLength
	Diameter
)

func (d Dimension) String() string {
	switch d {
	case Height:
		return "height"
	case Flow:
		return "flow"
	case PipeLength:
		return "pipe length"
	case Diameter:
		return "diameter"
	}
	return fmt.Sprintf("dimension(%d)", int(d))
}

// Unit tags accepted on input.
const (
	UnitMetre      = "m"
	UnitKilometre  = "km"
	UnitFoot       = "ft"
	UnitMile       = "mi"
	UnitMillimetre = "mm"
	UnitInch       = "in"

	UnitLitresPerSecond = "l/s"
	UnitCubicMetresHour = "m3/h"
	UnitGPM             = "gpm"
)

type unitFactor struct {
	unit   string
	factor float64 // SI = value * factor
}

// Flow output targets m3/s; every other family targets metres.
var unitTable = map[Dimension][]unitFactor{
	Height: {
		{UnitMetre, 1},
		{UnitFoot, 0.3048},
	},
	Flow: {
		{UnitLitresPerSecond, 1.0 / 1000},
		{UnitCubicMetresHour, 1.0 / 3600},
		{UnitGPM, 6.309e-5},
	},
	PipeLength: {
		{UnitMetre, 1},
		{UnitKilometre, 1000},
		{UnitFoot, 0.3048},
		{UnitMile, 1609.34},
	},
	Diameter: {
		{UnitMillimetre, 1.0 / 1000},
		{UnitInch, 0.0254},
	},
}

func factor(dim Dimension, unit string) (float64, bool) {
	for _, uf := range unitTable[dim] {
		if uf.unit == unit {
			return uf.factor, true
		}
	}
	return 0, false
}

// Units lists the tags accepted for dim.
func Units(dim Dimension) []string {
	out := make([]string, 0, len(unitTable[dim]))
	for _, uf := range unitTable[dim] {
		out = append(out, uf.unit)
	}
	return out
}

// ValidUnit reports whether unit belongs to dim.
func ValidUnit(dim Dimension, unit string) bool {
	_, ok := factor(dim, unit)
	return ok
}

// ToSI converts value in unit to metres (or m3/s for Flow).
func ToSI(value float64, unit string, dim Dimension) (float64, error) {
	f, ok := factor(dim, unit)
	if !ok {
		return 0, invalid(dim.String()+" unit", "unrecognized unit %q (expected one of %v)", unit, Units(dim))
	}
	return value * f, nil
}

// FromSI is the inverse of ToSI.
func FromSI(value float64, unit string, dim Dimension) (float64, error) {
	f, ok := factor(dim, unit)
	if !ok {
		return 0, invalid(dim.String()+" unit", "unrecognized unit %q (expected one of %v)", unit, Units(dim))
	}
	return value / f, nil
}

// SI is an Input with every dimensioned quantity in base units.
type SI struct {
	HeightM   float64
	FlowM3s   float64
	LengthM   float64
	DiameterM float64
}

// Normalize validates in and converts it to SI. Nothing is converted when
// validation fails.
func Normalize(in Input) (SI, error) {
	if err := in.Validate(); err != nil {
		return SI{}, err
	}
	var (
		si  SI
		err error
	)
	if si.HeightM, err = ToSI(in.GeometricHeight, in.GeometricHeightUnit, Height); err != nil {
		return SI{}, err
	}
	if si.FlowM3s, err = ToSI(in.FlowRate, in.FlowRateUnit, Flow); err != nil {
		return SI{}, err
	}
	if si.LengthM, err = ToSI(in.PipeLength, in.PipeLengthUnit, PipeLength); err != nil {
		return SI{}, err
	}
	if si.DiameterM, err = ToSI(in.PipeDiameter, in.PipeDiameterUnit, Diameter); err != nil {
		return SI{}, err
	}
	return si, nil
}

func positive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return invalid(field, "must be a positive finite number, got %v", v)
	}
	return nil
}
