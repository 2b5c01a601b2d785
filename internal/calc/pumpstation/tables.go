package pumpstation

import "strings"

type Material string

const (
	MaterialPVC         Material = "pvc"
	MaterialSteel       Material = "steel"
	MaterialCopper      Material = "copper"
	MaterialConcrete    Material = "concrete"
	MaterialDuctileIron Material = "ductile_iron"
	MaterialOther       Material = "other"
)

// DefaultRoughnessMM is used for any material without a table entry.
const DefaultRoughnessMM = 0.0015

func (m Material) normalized() Material {
	return Material(strings.ToLower(strings.TrimSpace(string(m))))
}

// Roughness returns the absolute roughness in millimetres and whether the
// material had its own entry.
func (m Material) Roughness() (mm float64, known bool) {
	switch m.normalized() {
	case MaterialPVC:
		return 0.00015, true
	case MaterialSteel:
		return 0.000045, true
	case MaterialCopper:
		return 0.0000015, true
	case MaterialConcrete:
		return 0.0003, true
	case MaterialDuctileIron:
		return 0.00015, true
	default:
		return DefaultRoughnessMM, false
	}
}

type FittingKind int

const (
	ValveGate FittingKind = iota
	ValveButterfly
	ValveCheck
	ValveGlobe
	Elbow90
	Elbow45
	numFittingKinds
)

var fittingNames = [numFittingKinds]string{
	ValveGate:      "valve_gate",
	ValveButterfly: "valve_butterfly",
	ValveCheck:     "valve_check",
	ValveGlobe:     "valve_globe",
	Elbow90:        "elbow_90",
	Elbow45:        "elbow_45",
}

var fittingK = [numFittingKinds]float64{
	ValveGate:      0.2,
	ValveButterfly: 0.3,
	ValveCheck:     2.0,
	ValveGlobe:     10.0,
	Elbow90:        0.9,
	Elbow45:        0.4,
}

// FittingKinds lists every fitting kind in table order.
func FittingKinds() []FittingKind {
	kinds := make([]FittingKind, numFittingKinds)
	for i := range kinds {
		kinds[i] = FittingKind(i)
	}
	return kinds
}

func (k FittingKind) String() string {
	if k < 0 || k >= numFittingKinds {
		return "unknown"
	}
	return fittingNames[k]
}

// K returns the dimensionless minor-loss coefficient.
func (k FittingKind) K() float64 {
	if k < 0 || k >= numFittingKinds {
		return 0
	}
	return fittingK[k]
}

// FittingCounts holds the number of each fitting on the discharge line.
type FittingCounts struct {
	ValveGate      int `json:"valve_gate" yaml:"valve_gate"`
	ValveButterfly int `json:"valve_butterfly" yaml:"valve_butterfly"`
	ValveCheck     int `json:"valve_check" yaml:"valve_check"`
	ValveGlobe     int `json:"valve_globe" yaml:"valve_globe"` // regulating / sustaining valves
	Elbow90        int `json:"elbow_90" yaml:"elbow_90"`
	Elbow45        int `json:"elbow_45" yaml:"elbow_45"`
}

func (c FittingCounts) Count(k FittingKind) int {
	switch k {
	case ValveGate:
		return c.ValveGate
	case ValveButterfly:
		return c.ValveButterfly
	case ValveCheck:
		return c.ValveCheck
	case ValveGlobe:
		return c.ValveGlobe
	case Elbow90:
		return c.Elbow90
	case Elbow45:
		return c.Elbow45
	}
	return 0
}

// With returns a copy with the count for k replaced.
func (c FittingCounts) With(k FittingKind, n int) FittingCounts {
	switch k {
	case ValveGate:
		c.ValveGate = n
	case ValveButterfly:
		c.ValveButterfly = n
	case ValveCheck:
		c.ValveCheck = n
	case ValveGlobe:
		c.ValveGlobe = n
	case Elbow90:
		c.Elbow90 = n
	case Elbow45:
		c.Elbow45 = n
	}
	return c
}

// TotalK weights every count by its K value.
func (c FittingCounts) TotalK() float64 {
	var total float64
	for _, k := range FittingKinds() {
		total += float64(c.Count(k)) * k.K()
	}
	return total
}

func (c FittingCounts) validate() error {
	for _, k := range FittingKinds() {
		if n := c.Count(k); n < 0 {
			return invalid(k.String(), "count must be non-negative, got %d", n)
		}
	}
	return nil
}
