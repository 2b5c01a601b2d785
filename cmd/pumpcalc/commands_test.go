package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"PumpStation/internal/calc/pumpstation"

	"github.com/sirupsen/logrus"
)

const sample = `project_name: North Lift Station
author: J. Doe
geometric_height: 25
geometric_height_unit: m
flow_rate: 50
flow_rate_unit: l/s
pipe_length: 150
pipe_length_unit: m
pipe_diameter: 200
pipe_diameter_unit: mm
pipe_material: pvc
pump_efficiency: 0.75
valve_gate: 2
elbow_90: 4
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadInput(t *testing.T) {
	in, err := loadInput(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	if in.ProjectName != "North Lift Station" || in.FlowRate != 50 || in.PipeMaterial != pumpstation.MaterialPVC {
		t.Errorf("input = %+v", in)
	}
	if in.ValveGate != 2 || in.Elbow90 != 4 {
		t.Errorf("fittings = %+v", in.FittingCounts)
	}
}

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

func TestCalcCommand(t *testing.T) {
	path := writeSample(t)

	var out bytes.Buffer
	cmd := calcCmd(quietLog())
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-f", path, "--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	var res pumpstation.Result
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("%v: %s", err, out.String())
	}
	if res.Velocity != 1.59 || res.TotalK != 4.0 {
		t.Errorf("velocity %v, K %v", res.Velocity, res.TotalK)
	}

	out.Reset()
	cmd = calcCmd(quietLog())
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-f", path})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Pump curve") || !strings.Contains(out.String(), "1.59 m/s") {
		t.Errorf("table output:\n%s", out.String())
	}
}

func TestCalcCommandRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(strings.Replace(sample, "flow_rate: 50", "flow_rate: 0", 1)), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := calcCmd(quietLog())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-f", path})
	if err := cmd.Execute(); err == nil {
		t.Error("zero flow accepted")
	}
}

func TestReportAndTemplateCommands(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "out.pdf")
	cmd := reportCmd(quietLog())
	cmd.SetArgs([]string{"-f", writeSample(t), "-o", pdf, "--flow-unit", "m3/h"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(pdf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("report is not a PDF")
	}

	xlsx := filepath.Join(dir, "inputs.xlsx")
	cmd = templateCmd()
	cmd.SetArgs([]string{"-o", xlsx})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if st, err := os.Stat(xlsx); err != nil || st.Size() == 0 {
		t.Errorf("template: %v", err)
	}
}
