package batch

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestProcess(t *testing.T) {
	items := []string{"a", "fail", "c"}

	br := Process(items, func(s string) string { return "item " + s }, func(s string) (string, error) {
		if s == "fail" {
			return "", errors.New("boom")
		}
		return "id-" + s, nil
	})

	if br.Total != 3 {
		t.Errorf("Total = %d, want 3", br.Total)
	}
	if br.Successful != 2 {
		t.Errorf("Successful = %d, want 2", br.Successful)
	}
	if br.Failed != 1 {
		t.Errorf("Failed = %d, want 1", br.Failed)
	}

	if br.Results[0].ID != "id-a" || br.Results[0].Index != 1 {
		t.Errorf("unexpected first result: %+v", br.Results[0])
	}
	if br.Results[1].Status != StatusError || br.Results[1].Error != "boom" {
		t.Errorf("unexpected second result: %+v", br.Results[1])
	}
	if br.Results[2].Label != "item c" {
		t.Errorf("Label = %q, want %q", br.Results[2].Label, "item c")
	}
}

func TestProcess_Empty(t *testing.T) {
	br := Process[int](nil, nil, func(int) (string, error) { return "", nil })

	if br.Total != 0 || br.Successful != 0 || br.Failed != 0 {
		t.Errorf("expected empty counts, got %+v", br)
	}

	// Results must encode as [] rather than null
	data, err := json.Marshal(br)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"total":0,"successful":0,"failed":0,"results":[]}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestFailures(t *testing.T) {
	br := Summarize([]Result{
		NewSuccessResult(1, "Buy milk", "t1"),
		NewErrorResult(2, "Call mom", errors.New("API error: 500 - oops")),
	})

	failures := br.Failures("Task")
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0] != "Task 2 ('Call mom'): API error: 500 - oops" {
		t.Errorf("unexpected failure line: %q", failures[0])
	}
}
