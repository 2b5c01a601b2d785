package importer

import (
	"errors"
	"net/http"
	"time"

	"PumpStation/internal/calc/pumpstation"
	"PumpStation/internal/metrics"

	"github.com/sirupsen/logrus"
)

const maxUpload = 10 << 20

type Handler struct {
	Solver  *pumpstation.Solver
	Log     logrus.FieldLogger
	Metrics *metrics.Recorder
}

type RowResult struct {
	Row    int                 `json:"row"`
	Result *pumpstation.Result `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
	Field  string              `json:"field,omitempty"`
}

type ImportResult struct {
	Count   int         `json:"count"`
	Failed  int         `json:"failed"`
	Results []RowResult `json:"results"`
}

func (h *Handler) solver() *pumpstation.Solver {
	if h.Solver == nil {
		return pumpstation.NewSolver(nil)
	}
	return h.Solver
}

// Calculate solves parsed rows, keeping per-row failures. A nil s solves
// without logging.
func Calculate(s *pumpstation.Solver, rows []Row, m *metrics.Recorder) ImportResult {
	if s == nil {
		s = pumpstation.NewSolver(nil)
	}
	out := ImportResult{Count: len(rows), Results: make([]RowResult, 0, len(rows))}
	for _, row := range rows {
		rr := RowResult{Row: row.Line}
		err := row.Err
		var res pumpstation.Result
		if err == nil {
			res, err = s.Solve(row.Input)
		}
		pumpstation.Count(m, "import", res, err)
		if err != nil {
			out.Failed++
			rr.Error = err.Error()
			var ve *pumpstation.ValidationError
			if errors.As(err, &ve) {
				rr.Field = ve.Field
			}
		} else {
			rounded := res.Rounded()
			rr.Result = &rounded
		}
		out.Results = append(out.Results, rr)
	}
	return out
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		pumpstation.WriteError(w, http.StatusBadRequest, "File required", "file")
		return
	}
	defer file.Close()

	rows, err := Parse(file)
	if err != nil {
		if h.Log != nil {
			h.Log.WithError(err).Warn("rejecting spreadsheet")
		}
		pumpstation.WriteError(w, http.StatusBadRequest, err.Error(), "file")
		return
	}
	res := Calculate(h.solver(), rows, h.Metrics)
	h.Metrics.ObserveDuration("import", time.Since(start))
	pumpstation.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"pumpstation_inputs.xlsx\"")
	if err := Template(w); err != nil {
		if h.Log != nil {
			h.Log.WithError(err).Error("writing template")
		}
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
