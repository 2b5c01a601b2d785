package autodesign

import (
	"errors"
	"net/http"
	"time"

	"PumpStation/internal/calc/pumpstation"
	"PumpStation/internal/metrics"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	Solver  *pumpstation.Solver
	Log     logrus.FieldLogger
	Metrics *metrics.Recorder
}

func (h *Handler) Size(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var input Input
	if err := pumpstation.DecodeJSON(w, r, &input); err != nil {
		pumpstation.WriteError(w, http.StatusBadRequest, "Invalid request payload", "")
		return
	}
	res, err := Size(h.Solver, input)
	pumpstation.Record(h.Metrics, "size", start, res.Result, err)
	if errors.Is(err, ErrNoDiameter) {
		pumpstation.WriteError(w, http.StatusUnprocessableEntity, err.Error(), "flow_rate")
		return
	}
	if err != nil {
		pumpstation.WriteCalcError(w, h.Log, err)
		return
	}
	res.Result = res.Result.Rounded()
	pumpstation.WriteJSON(w, http.StatusOK, res)
}
