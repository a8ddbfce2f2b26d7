package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
)

// reportedError marks an error whose JSON has already been written.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// errorBody is the JSON shape of every failure.
type errorBody struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// writeError prints err as {"error": "..."}. Aggregated validation errors are
// listed individually under "errors".
func writeError(w io.Writer, err error) {
	body := errorBody{Error: err.Error()}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		body.Error = "Validation errors found"
		for _, e := range merr.Errors {
			body.Errors = append(body.Errors, e.Error())
		}
	}
	_ = writeJSON(w, body)
}
