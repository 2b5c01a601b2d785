package importer

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"PumpStation/internal/calc/pumpstation"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Template(&buf); err != nil {
		t.Fatal(err)
	}
	rows, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	row := rows[0]
	if row.Err != nil || row.Line != 2 {
		t.Fatalf("row = %+v", row)
	}
	in := row.Input
	if in.GeometricHeight != 25 || in.FlowRate != 50 || in.PipeDiameterUnit != "mm" ||
		in.PipeMaterial != pumpstation.MaterialPVC || in.PumpEfficiency != 0.75 {
		t.Errorf("input = %+v", in)
	}
	if in.ValveGate != 2 || in.ValveCheck != 1 || in.Elbow90 != 4 {
		t.Errorf("fittings = %+v", in.FittingCounts)
	}
	if _, err := pumpstation.Calculate(in); err != nil {
		t.Errorf("template row does not solve: %v", err)
	}
}

func TestParseRowErrors(t *testing.T) {
	buf := workbook(t,
		// Column order differs from the template and fittings are partial.
		[]interface{}{"flow_rate", "flow_rate_unit", "geometric_height", "geometric_height_unit",
			"pipe_length", "pipe_length_unit", "pipe_diameter", "pipe_diameter_unit",
			"pipe_material", "pump_efficiency", "elbow_90"},
		[]interface{}{50, "l/s", 25, "m", 150, "m", 200, "mm", "pvc", 0.75, 3},
		[]interface{}{"fifty", "l/s", 25, "m", 150, "m", 200, "mm", "pvc", 0.75},
		[]interface{}{},
		[]interface{}{50, "l/s", 25, "m", 150, "m", 200, "mm", "pvc", 0.75, "two"},
	)
	rows, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (blank row skipped)", len(rows))
	}
	if rows[0].Err != nil || rows[0].Input.Elbow90 != 3 || rows[0].Input.FlowRate != 50 {
		t.Errorf("row 2 = %+v", rows[0])
	}
	var ve *pumpstation.ValidationError
	if !errors.As(rows[1].Err, &ve) || ve.Field != "flow_rate" || rows[1].Line != 3 {
		t.Errorf("row 3 err = %v", rows[1].Err)
	}
	if !errors.As(rows[2].Err, &ve) || ve.Field != "elbow_90" || rows[2].Line != 5 {
		t.Errorf("row 5 err = %v", rows[2].Err)
	}
}

func TestParseRejectsBadSheets(t *testing.T) {
	if _, err := Parse(strings.NewReader("not a workbook")); err == nil {
		t.Error("garbage accepted")
	}
	if _, err := Parse(workbook(t, []interface{}{"flow_rate"})); !errors.Is(err, ErrEmpty) {
		t.Errorf("header only: err = %v", err)
	}
	_, err := Parse(workbook(t, []interface{}{"flow_rate", "flow_rate_unit"}, []interface{}{50, "l/s"}))
	if err == nil || !strings.Contains(err.Error(), "pipe_material") {
		t.Errorf("missing columns: err = %v", err)
	}
}

var header = []interface{}{"geometric_height", "geometric_height_unit", "flow_rate", "flow_rate_unit",
	"pipe_length", "pipe_length_unit", "pipe_diameter", "pipe_diameter_unit",
	"pipe_material", "pump_efficiency", "valve_gate", "elbow_90"}

func TestParseCountsAreDecimal(t *testing.T) {
	buf := workbook(t, header,
		[]interface{}{25, "m", 50, "l/s", 150, "m", 200, "mm", "pvc", 0.75, "010", "08"},
		[]interface{}{25, "m", 50, "l/s", 150, "m", 200, "mm", "pvc", 0.75, 2.5, 1},
		[]interface{}{25, "m", 50, "l/s", 150, "m", 200, "mm", "pvc", 0.75, "4.0", 1},
	)
	rows, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Err != nil || rows[0].Input.ValveGate != 10 || rows[0].Input.Elbow90 != 8 {
		t.Errorf("row 2 = %+v, err %v", rows[0].Input.FittingCounts, rows[0].Err)
	}
	var ve *pumpstation.ValidationError
	if !errors.As(rows[1].Err, &ve) || ve.Field != "valve_gate" {
		t.Errorf("fractional count: err = %v", rows[1].Err)
	}
	if rows[2].Err != nil || rows[2].Input.ValveGate != 4 {
		t.Errorf("row 4 = %+v, err %v", rows[2].Input.FittingCounts, rows[2].Err)
	}
}

func TestParseRowLimit(t *testing.T) {
	data := []interface{}{25, "m", 50, "l/s", 150, "m", 200, "mm", "pvc", 0.75, 0, 0}
	sheet := [][]interface{}{header}
	for i := 0; i < MaxRows; i++ {
		sheet = append(sheet, data)
	}
	rows, err := Parse(workbook(t, sheet...))
	if err != nil || len(rows) != MaxRows {
		t.Fatalf("at limit: %d rows, err %v", len(rows), err)
	}

	sheet = append(sheet, data)
	if _, err := Parse(workbook(t, sheet...)); !errors.Is(err, ErrTooMany) {
		t.Errorf("over limit: err = %v", err)
	}
}

func TestCalculateNilSolver(t *testing.T) {
	var buf bytes.Buffer
	if err := Template(&buf); err != nil {
		t.Fatal(err)
	}
	rows, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	rows = append(rows, Row{Line: 3, Err: &pumpstation.ValidationError{Field: "flow_rate", Reason: "bad"}})
	res := Calculate(nil, rows, nil)
	if res.Count != 2 || res.Failed != 1 || res.Results[0].Result == nil || res.Results[1].Field != "flow_rate" {
		t.Errorf("result = %+v", res)
	}
}

func upload(t *testing.T, name string, write func(io.Writer) error) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	if err := write(part); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/pumpstation/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportHandlerRejectsOversizedSheet(t *testing.T) {
	data := []interface{}{25, "m", 50, "l/s", 150, "m", 200, "mm", "pvc", 0.75, 0, 0}
	sheet := [][]interface{}{header}
	for i := 0; i <= MaxRows; i++ {
		sheet = append(sheet, data)
	}
	buf := workbook(t, sheet...)
	req := upload(t, "big.xlsx", func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"field":"file"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestImportHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, upload(t, "inputs.xlsx", Template))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"count":1`) || !strings.Contains(rec.Body.String(), `"failed":0`) {
		t.Errorf("body = %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	(&Handler{}).Import(rec, httptest.NewRequest(http.MethodPost, "/api/user/tools/pumpstation/import", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no file: status = %d", rec.Code)
	}
}

func TestTemplateHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Template(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// xlsx is a zip archive.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("template is not a zip archive")
	}
}
