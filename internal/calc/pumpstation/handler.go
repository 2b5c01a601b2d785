package pumpstation

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"PumpStation/internal/metrics"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// Handler serves the operating-point calculation. The zero value works: it
// solves silently and records no metrics.
type Handler struct {
	Solver  *Solver
	Log     logrus.FieldLogger
	Metrics *metrics.Recorder
}

func (h *Handler) solver() *Solver {
	if h.Solver == nil {
		return silent
	}
	return h.Solver
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var input Input
	if err := DecodeJSON(w, r, &input); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request payload", "")
		return
	}
	res, err := h.solver().Solve(input)
	Record(h.Metrics, "calc", start, res, err)
	if err != nil {
		WriteCalcError(w, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, res.Rounded())
}

// DecodeJSON reads a size-limited JSON body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// Record updates calculation metrics for one request.
func Record(m *metrics.Recorder, tool string, start time.Time, res Result, err error) {
	m.ObserveDuration(tool, time.Since(start))
	Count(m, tool, res, err)
}

// Count records the outcome and warnings of one calculation without timing
// it, for tools that solve many inputs per request.
func Count(m *metrics.Recorder, tool string, res Result, err error) {
	m.CountCalculation(tool, metrics.Outcome(err, ErrValidation))
	if err != nil {
		return
	}
	for _, w := range res.Warnings {
		m.ObserveWarning(w.Code)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// WriteJSON encodes v before committing the status, so an unencodable value
// becomes a 500 instead of an empty success.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func WriteError(w http.ResponseWriter, status int, msg, field string) {
	WriteJSON(w, status, errorResponse{Error: msg, Field: field})
}

// WriteCalcError maps an engine error to a response: validation failures are
// the caller's, anything else is logged and reported as a server error.
func WriteCalcError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		WriteError(w, http.StatusBadRequest, ve.Error(), ve.Field)
		return
	}
	if log != nil {
		log.WithError(err).Error("calculation failed")
	}
	WriteError(w, http.StatusInternalServerError, "Calculation error", "")
}
