package recommend

import (
	"errors"
	"math"
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

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (h *Handler) Motor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var input Input
	if err := pumpstation.DecodeJSON(w, r, &input); err != nil {
		pumpstation.WriteError(w, http.StatusBadRequest, "Invalid request payload", "")
		return
	}
	res, err := Motor(h.Solver, input)
	pumpstation.Record(h.Metrics, "motor", start, pumpstation.Result{Warnings: res.Warnings}, err)
	if errors.Is(err, ErrTooLarge) {
		pumpstation.WriteError(w, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}
	if err != nil {
		pumpstation.WriteCalcError(w, h.Log, err)
		return
	}
	res.ShaftPowerKW = round2(res.ShaftPowerKW)
	res.RequiredKW = round2(res.RequiredKW)
	res.MotorHP = round2(res.MotorHP)
	res.LoadFactor = round2(res.LoadFactor)
	res.TotalHead = round2(res.TotalHead)
	pumpstation.WriteJSON(w, http.StatusOK, res)
}
