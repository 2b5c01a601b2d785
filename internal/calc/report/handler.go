package report

import (
	"bytes"
	"net/http"
	"time"

	"PumpStation/internal/auth"
	"PumpStation/internal/calc/pumpstation"
	"PumpStation/internal/metrics"
	"PumpStation/internal/repo"

	"github.com/sirupsen/logrus"
)

// Handler serves PDF reports. Repo is optional; when set and the request
// carries a session, the user's preferred display units are used.
type Handler struct {
	Solver  *pumpstation.Solver
	Repo    repo.Repository
	Log     logrus.FieldLogger
	Metrics *metrics.Recorder
}

func (h *Handler) solve(in pumpstation.Input) (pumpstation.Result, error) {
	if h.Solver == nil {
		return pumpstation.Calculate(in)
	}
	return h.Solver.Solve(in)
}

func (h *Handler) units(r *http.Request) Units {
	id := auth.UserID(r.Context())
	if h.Repo == nil || id == 0 {
		return DefaultUnits
	}
	prof, err := h.Repo.GetProfileByID(r.Context(), id)
	if err != nil {
		if h.Log != nil {
			h.Log.WithError(err).WithField("user_id", id).Warn("loading unit preferences")
		}
		return DefaultUnits
	}
	return Units{Flow: prof.FlowUnit, Height: prof.HeightUnit}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var input Input
	if err := pumpstation.DecodeJSON(w, r, &input); err != nil {
		pumpstation.WriteError(w, http.StatusBadRequest, "Invalid request payload", "")
		return
	}
	res, err := h.solve(input.Input)
	pumpstation.Record(h.Metrics, "report", start, res, err)
	if err != nil {
		pumpstation.WriteCalcError(w, h.Log, err)
		return
	}

	var buf bytes.Buffer
	if err := Render(&buf, input, res, h.units(r), start); err != nil {
		if h.Log != nil {
			h.Log.WithError(err).WithField("project", input.ProjectName).Error("rendering report")
		}
		pumpstation.WriteError(w, http.StatusInternalServerError, "Report generation error", "")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"pumpstation_report.pdf\"")
	w.Write(buf.Bytes())
}
