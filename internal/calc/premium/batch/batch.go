package batch

import (
	"errors"
	"fmt"

	"PumpStation/internal/calc/pumpstation"
)

// MaxItems bounds the size of one batch request.
const MaxItems = 200

var ErrEmpty = errors.New("batch: no items")

type Input struct {
	Items []pumpstation.Input `json:"items"`
}

// ItemResult holds either a rounded result or the reason the item failed.
type ItemResult struct {
	Index  int                 `json:"index"`
	Result *pumpstation.Result `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
	Field  string              `json:"field,omitempty"`

	err error
}

// Err returns the item's calculation error, if any.
func (r ItemResult) Err() error { return r.err }

type Result struct {
	Count  int          `json:"count"`
	Failed int          `json:"failed"`
	Items  []ItemResult `json:"items"`
}

// Calculate solves every item independently. One bad item does not stop the
// others; only an empty or oversized batch is an error.
func Calculate(s *pumpstation.Solver, in Input) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, ErrEmpty
	}
	if len(in.Items) > MaxItems {
		return Result{}, fmt.Errorf("batch: %d items exceeds the limit of %d", len(in.Items), MaxItems)
	}
	if s == nil {
		s = pumpstation.NewSolver(nil)
	}

	out := Result{Count: len(in.Items), Items: make([]ItemResult, len(in.Items))}
	for i, item := range in.Items {
		out.Items[i] = solveItem(s, i, item)
		if out.Items[i].err != nil {
			out.Failed++
		}
	}
	return out, nil
}

func solveItem(s *pumpstation.Solver, i int, in pumpstation.Input) ItemResult {
	res, err := s.Solve(in)
	if err != nil {
		ir := ItemResult{Index: i, Error: err.Error(), err: err}
		var ve *pumpstation.ValidationError
		if errors.As(err, &ve) {
			ir.Field = ve.Field
		}
		return ir
	}
	rounded := res.Rounded()
	return ItemResult{Index: i, Result: &rounded}
}
