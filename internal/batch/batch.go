package batch

import (
	"fmt"
)

// Status values of a single Result
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result represents the result of a single operation in a batch
type Result struct {
	// Index is the 1-based position of the item in the batch.
	Index  int    `json:"index"`
	Label  string `json:"label,omitempty"`
	Status string `json:"status"` // "success" or "error"
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// Failures returns the failed results as "Task 2 ('title'): message" lines.
func (br BatchResult) Failures(noun string) []string {
	var out []string
	for _, r := range br.Results {
		if r.Status == StatusError {
			out = append(out, fmt.Sprintf("%s %d ('%s'): %s", noun, r.Index, r.Label, r.Error))
		}
	}
	return out
}

// Summarize aggregates results into a BatchResult.
func Summarize(results []Result) BatchResult {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}
	if br.Results == nil {
		br.Results = []Result{}
	}

	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	return br
}

// Process executes fn on each item in order and collects the results.
// fn returns the identifier of what it produced. label names an item in
// the results and may be nil.
func Process[T any](items []T, label func(T) string, fn func(item T) (string, error)) BatchResult {
	results := make([]Result, 0, len(items))

	for i, item := range items {
		var l string
		if label != nil {
			l = label(item)
		}
		id, err := fn(item)
		if err != nil {
			results = append(results, NewErrorResult(i+1, l, err))
			continue
		}
		results = append(results, NewSuccessResult(i+1, l, id))
	}

	return Summarize(results)
}

// NewSuccessResult creates a success result
func NewSuccessResult(index int, label, id string) Result {
	return Result{
		Index:  index,
		Label:  label,
		Status: StatusSuccess,
		ID:     id,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(index int, label string, err error) Result {
	return Result{
		Index:  index,
		Label:  label,
		Status: StatusError,
		Error:  err.Error(),
	}
}
