package pumpstation

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
)

// Physical constants. Water is taken at 20 °C.
const (
	Gravity            = 9.80665  // m/s²
	WaterDensity       = 1000.0   // kg/m³
	KinematicViscosity = 1.004e-6 // m²/s
	KWToHP             = 1.34102
	M3sToGPM           = 1 / 6.309e-5

	LaminarLimit      = 2000.0
	TransitionalLimit = 4000.0

	MinVelocity = 0.6 // m/s, below this solids settle
	MaxVelocity = 3.0 // m/s, above this erosion and surge become a concern
)

type Input struct {
	GeometricHeight     float64  `json:"geometric_height" yaml:"geometric_height"`
	GeometricHeightUnit string   `json:"geometric_height_unit" yaml:"geometric_height_unit"`
	FlowRate            float64  `json:"flow_rate" yaml:"flow_rate"`
	FlowRateUnit        string   `json:"flow_rate_unit" yaml:"flow_rate_unit"`
	PipeLength          float64  `json:"pipe_length" yaml:"pipe_length"`
	PipeLengthUnit      string   `json:"pipe_length_unit" yaml:"pipe_length_unit"`
	PipeDiameter        float64  `json:"pipe_diameter" yaml:"pipe_diameter"`
	PipeDiameterUnit    string   `json:"pipe_diameter_unit" yaml:"pipe_diameter_unit"`
	PipeMaterial        Material `json:"pipe_material" yaml:"pipe_material"`
	PumpEfficiency      float64  `json:"pump_efficiency" yaml:"pump_efficiency"` // fraction, not percent

	FittingCounts `yaml:",inline"`
}

// Validate checks ranges and unit tags. It runs before any conversion.
func (in Input) Validate() error {
	if !ValidUnit(Height, in.GeometricHeightUnit) {
		return invalid("geometric_height_unit", "unrecognized unit %q (expected one of %v)", in.GeometricHeightUnit, Units(Height))
	}
	if !ValidUnit(Flow, in.FlowRateUnit) {
		return invalid("flow_rate_unit", "unrecognized unit %q (expected one of %v)", in.FlowRateUnit, Units(Flow))
	}
	if !ValidUnit(PipeLength, in.PipeLengthUnit) {
		return invalid("pipe_length_unit", "unrecognized unit %q (expected one of %v)", in.PipeLengthUnit, Units(PipeLength))
	}
	if !ValidUnit(Diameter, in.PipeDiameterUnit) {
		return invalid("pipe_diameter_unit", "unrecognized unit %q (expected one of %v)", in.PipeDiameterUnit, Units(Diameter))
	}
	if err := positive("geometric_height", in.GeometricHeight); err != nil {
		return err
	}
	if err := positive("flow_rate", in.FlowRate); err != nil {
		return err
	}
	if err := positive("pipe_length", in.PipeLength); err != nil {
		return err
	}
	if err := positive("pipe_diameter", in.PipeDiameter); err != nil {
		return err
	}
	if !(in.PumpEfficiency > 0 && in.PumpEfficiency <= 1) {
		return invalid("pump_efficiency", "must be in (0, 1], got %v", in.PumpEfficiency)
	}
	return in.FittingCounts.validate()
}

type FlowRegime string

const (
	Laminar      FlowRegime = "laminar"
	Transitional FlowRegime = "transitional"
	Turbulent    FlowRegime = "turbulent"
)

// RegimeOf classifies a Reynolds number. The friction factor only
// distinguishes laminar from the rest; transitional is descriptive.
func RegimeOf(re float64) FlowRegime {
	switch {
	case re <= LaminarLimit:
		return Laminar
	case re <= TransitionalLimit:
		return Transitional
	default:
		return Turbulent
	}
}

type Result struct {
	TotalHead        float64    `json:"total_head"`
	GeometricHeight  float64    `json:"geometric_height"`
	FrictionHeadLoss float64    `json:"friction_head_loss"`
	MinorHeadLoss    float64    `json:"minor_head_loss"`
	Velocity         float64    `json:"velocity"`
	Reynolds         float64    `json:"reynolds"`
	FrictionFactor   float64    `json:"friction_factor"`
	Regime           FlowRegime `json:"regime"`
	RoughnessMM      float64    `json:"roughness_mm"`
	TotalK           float64    `json:"total_k"`

	FlowRateM3s float64 `json:"flow_rate_m3s"`
	FlowRateLs  float64 `json:"flow_rate"`
	FlowRateGPM float64 `json:"flow_rate_gpm"`

	PowerW  float64 `json:"power_w"`
	PowerKW float64 `json:"power_kw"`
	PowerHP float64 `json:"power_hp"`

	PumpCurve   PumpCurve    `json:"pump_curve"`
	SystemCurve []CurvePoint `json:"system_curve"`

	Warnings []PhysicalWarning `json:"warnings,omitempty"`
}

// Solver runs the hydraulic calculation. The zero value is not usable; use
// NewSolver. A Solver is safe for concurrent use.
type Solver struct {
	log logrus.FieldLogger
}

// NewSolver returns a Solver that reports intermediate values to log at debug
// level. A nil log discards them.
func NewSolver(log logrus.FieldLogger) *Solver {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Solver{log: log}
}

var silent = NewSolver(nil)

// Calculate solves in with a solver that logs nothing.
func Calculate(in Input) (Result, error) {
	return silent.Solve(in)
}

// Solve computes the operating point, power and synthetic pump curve.
func (s *Solver) Solve(in Input) (Result, error) {
	si, err := Normalize(in)
	if err != nil {
		return Result{}, err
	}
	log := s.log.WithFields(logrus.Fields{
		"height_m":   si.HeightM,
		"flow_m3s":   si.FlowM3s,
		"length_m":   si.LengthM,
		"diameter_m": si.DiameterM,
		"material":   string(in.PipeMaterial),
		"efficiency": in.PumpEfficiency,
	})

	var warnings []PhysicalWarning
	roughnessMM, known := in.PipeMaterial.Roughness()
	if !known && in.PipeMaterial.normalized() != MaterialOther {
		warnings = append(warnings, PhysicalWarning{
			Code:    WarnDefaultRoughness,
			Message: fmt.Sprintf("material %q has no roughness entry, using %g mm", in.PipeMaterial, DefaultRoughnessMM),
		})
	}

	area := math.Pi * si.DiameterM * si.DiameterM / 4
	velocity := si.FlowM3s / area
	reynolds := velocity * si.DiameterM / KinematicViscosity
	relRoughness := roughnessMM / 1000 / si.DiameterM
	f := FrictionFactor(reynolds, relRoughness)
	regime := RegimeOf(reynolds)

	velocityHead := velocity * velocity / (2 * Gravity)
	frictionLoss := f * (si.LengthM / si.DiameterM) * velocityHead
	totalK := in.FittingCounts.TotalK()
	minorLoss := totalK * velocityHead
	totalHead := si.HeightM + frictionLoss + minorLoss

	log.WithFields(logrus.Fields{
		"roughness_mm":    roughnessMM,
		"velocity":        velocity,
		"reynolds":        reynolds,
		"regime":          regime,
		"friction_factor": f,
		"friction_loss":   frictionLoss,
		"total_k":         totalK,
		"minor_loss":      minorLoss,
		"total_head":      totalHead,
	}).Debug("head loss computed")

	if regime == Transitional {
		warnings = append(warnings, PhysicalWarning{
			Code:    WarnTransitional,
			Message: fmt.Sprintf("Reynolds number %.0f lies in the transition zone; turbulent friction factor applied", reynolds),
		})
	}
	switch {
	case velocity < MinVelocity:
		warnings = append(warnings, PhysicalWarning{
			Code:    WarnLowVelocity,
			Message: fmt.Sprintf("velocity %.2f m/s is below %.1f m/s; sediment may settle", velocity, MinVelocity),
		})
	case velocity > MaxVelocity:
		warnings = append(warnings, PhysicalWarning{
			Code:    WarnHighVelocity,
			Message: fmt.Sprintf("velocity %.2f m/s exceeds %.1f m/s; expect erosion and surge risk", velocity, MaxVelocity),
		})
	}

	powerW, w := shaftPower(si.FlowM3s, totalHead, in.PumpEfficiency)
	if w != nil {
		log.Warn(w.Message)
		warnings = append(warnings, *w)
	}
	if !finite(velocity, reynolds, frictionLoss, minorLoss, totalHead, powerW) {
		return Result{}, invalid("flow_rate", "result is not finite for flow %g m³/s through a %g m pipe", si.FlowM3s, si.DiameterM)
	}
	powerKW := powerW / 1000

	log.WithFields(logrus.Fields{
		"power_w":  powerW,
		"power_kw": powerKW,
		"power_hp": powerKW * KWToHP,
	}).Debug("shaft power computed")

	curve := SynthesizeCurve(si.FlowM3s, totalHead)
	flows := make([]float64, len(curve.Points))
	for i, p := range curve.Points {
		if !finite(p.Flow, p.Head) {
			return Result{}, invalid("flow_rate", "pump curve is not finite for flow %g m³/s", si.FlowM3s)
		}
		flows[i] = p.Flow
	}

	return Result{
		TotalHead:        totalHead,
		GeometricHeight:  si.HeightM,
		FrictionHeadLoss: frictionLoss,
		MinorHeadLoss:    minorLoss,
		Velocity:         velocity,
		Reynolds:         reynolds,
		FrictionFactor:   f,
		Regime:           regime,
		RoughnessMM:      roughnessMM,
		TotalK:           totalK,
		FlowRateM3s:      si.FlowM3s,
		FlowRateLs:       si.FlowM3s * 1000,
		FlowRateGPM:      si.FlowM3s * M3sToGPM,
		PowerW:           powerW,
		PowerKW:          powerKW,
		PowerHP:          powerKW * KWToHP,
		PumpCurve:        curve,
		SystemCurve:      SystemCurve(si.HeightM, frictionLoss+minorLoss, si.FlowM3s, flows),
		Warnings:         warnings,
	}, nil
}

// FrictionFactor returns the Darcy friction factor. Re <= 2000 is laminar;
// above that the explicit Swamee-Jain form of Colebrook-White is used with no
// separate transition treatment. relRoughness is ε/D.
func FrictionFactor(re, relRoughness float64) float64 {
	if re <= LaminarLimit {
		return 64 / re
	}
	l := math.Log10(relRoughness/3.7 + 5.74/math.Pow(re, 0.9))
	return 0.25 / (l * l)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// shaftPower returns P = ρgQH/η in watts. A non-positive flow or head still
// yields a value, with a warning.
func shaftPower(q, h, efficiency float64) (float64, *PhysicalWarning) {
	p := WaterDensity * Gravity * q * h / efficiency
	if q <= 0 || h <= 0 {
		return p, &PhysicalWarning{
			Code:    WarnNonPhysicalPower,
			Message: fmt.Sprintf("power is not physically meaningful for flow %g m³/s and head %g m", q, h),
		}
	}
	return p, nil
}
