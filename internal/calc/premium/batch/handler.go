package batch

import (
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

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var input Input
	if err := pumpstation.DecodeJSON(w, r, &input); err != nil {
		pumpstation.WriteError(w, http.StatusBadRequest, "Invalid request payload", "")
		return
	}
	res, err := Calculate(h.Solver, input)
	if err != nil {
		pumpstation.WriteError(w, http.StatusBadRequest, err.Error(), "items")
		return
	}
	for _, item := range res.Items {
		var itemRes pumpstation.Result
		if item.Result != nil {
			itemRes = *item.Result
		}
		pumpstation.Count(h.Metrics, "batch", itemRes, item.Err())
	}
	h.Metrics.ObserveDuration("batch", time.Since(start))
	if h.Log != nil {
		h.Log.WithFields(logrus.Fields{"count": res.Count, "failed": res.Failed}).Info("batch calculated")
	}
	pumpstation.WriteJSON(w, http.StatusOK, res)
}
