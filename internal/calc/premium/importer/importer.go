// Package importer reads calculation inputs from spreadsheets.
package importer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"PumpStation/internal/calc/premium/batch"
	"PumpStation/internal/calc/pumpstation"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Inputs"

// Columns are matched by header name, so their order in an uploaded sheet
// does not matter. Fitting columns may be omitted.
var (
	requiredColumns = []string{
		"geometric_height", "geometric_height_unit",
		"flow_rate", "flow_rate_unit",
		"pipe_length", "pipe_length_unit",
		"pipe_diameter", "pipe_diameter_unit",
		"pipe_material", "pump_efficiency",
	}
	fittingColumns = fittingNames()
)

// MaxRows caps the data rows of one sheet at the batch item limit.
const MaxRows = batch.MaxItems

var (
	ErrEmpty   = errors.New("importer: sheet has no data rows")
	ErrTooMany = fmt.Errorf("importer: sheet has more than %d data rows", MaxRows)
)

func fittingNames() []string {
	kinds := pumpstation.FittingKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

// Row is one data row of a sheet. Line is the 1-based spreadsheet row.
type Row struct {
	Line  int
	Input pumpstation.Input
	Err   error
}

// Parse reads the first sheet of an xlsx workbook. A malformed row is
// returned with Err set; only an unreadable file or a bad header fails the
// whole parse.
func Parse(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("importer: read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmpty
	}
	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var out []Row
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		if len(out) == MaxRows {
			return nil, ErrTooMany
		}
		in, err := parseRow(row, index)
		out = append(out, Row{Line: i + 2, Input: in, Err: err})
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("importer: missing columns %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

type rowReader struct {
	row   []string
	index map[string]int
	err   error
}

func (rr *rowReader) cell(name string) string {
	i, ok := rr.index[name]
	if !ok || i >= len(rr.row) {
		return ""
	}
	return strings.TrimSpace(rr.row[i])
}

func (rr *rowReader) float(name string) float64 {
	s := rr.cell(name)
	if rr.err != nil || s == "" {
		return 0
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		rr.err = &pumpstation.ValidationError{Field: name, Reason: fmt.Sprintf("%q is not a number", s)}
	}
	return v
}

func (rr *rowReader) count(name string) int {
	s := rr.cell(name)
	if rr.err != nil || s == "" {
		return 0
	}
	// Parsed as decimal so "010" reads as ten; cast.ToIntE would take it as octal.
	v, err := cast.ToFloat64E(s)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		rr.err = &pumpstation.ValidationError{Field: name, Reason: fmt.Sprintf("%q is not a whole number", s)}
		return 0
	}
	return int(v)
}

func parseRow(row []string, index map[string]int) (pumpstation.Input, error) {
	rr := &rowReader{row: row, index: index}
	in := pumpstation.Input{
		GeometricHeight:     rr.float("geometric_height"),
		GeometricHeightUnit: rr.cell("geometric_height_unit"),
		FlowRate:            rr.float("flow_rate"),
		FlowRateUnit:        rr.cell("flow_rate_unit"),
		PipeLength:          rr.float("pipe_length"),
		PipeLengthUnit:      rr.cell("pipe_length_unit"),
		PipeDiameter:        rr.float("pipe_diameter"),
		PipeDiameterUnit:    rr.cell("pipe_diameter_unit"),
		PipeMaterial:        pumpstation.Material(rr.cell("pipe_material")),
		PumpEfficiency:      rr.float("pump_efficiency"),
	}
	for _, k := range pumpstation.FittingKinds() {
		in.FittingCounts = in.FittingCounts.With(k, rr.count(k.String()))
	}
	return in, rr.err
}

// Template writes an xlsx workbook with the expected header and one example
// row.
func Template(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(requiredColumns)+len(fittingColumns))
	for _, c := range requiredColumns {
		header = append(header, c)
	}
	for _, c := range fittingColumns {
		header = append(header, c)
	}
	example := []interface{}{
		25, pumpstation.UnitMetre,
		50, pumpstation.UnitLitresPerSecond,
		150, pumpstation.UnitMetre,
		200, pumpstation.UnitMillimetre,
		string(pumpstation.MaterialPVC), 0.75,
		2, 0, 1, 0, 4, 0,
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A2", &example); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return err
	}
	return f.Write(w)
}
