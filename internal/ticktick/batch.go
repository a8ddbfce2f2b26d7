package ticktick

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/batch"
)

// ErrEmptyBatch is returned by BatchCreateTasks when no tasks are given.
var ErrEmptyBatch = errors.New("No tasks provided. Please provide a list of tasks to create.")

// ValidateBatch checks every input and returns all violations at once, each
// prefixed with the 1-based task number.
func ValidateBatch(inputs []TaskInput) error {
	if len(inputs) == 0 {
		return ErrEmptyBatch
	}

	var result *multierror.Error
	for i, input := range inputs {
		if err := validateInput(input); err != nil {
			result = multierror.Append(result, fmt.Errorf("Task %d: %w", i+1, err))
		}
	}
	if result != nil {
		result.ErrorFormat = formatValidationErrors
	}
	return result.ErrorOrNil()
}

func formatValidationErrors(errs []error) string {
	msg := "Validation errors found"
	for _, err := range errs {
		msg += "\n  " + err.Error()
	}
	return msg
}

// BatchCreateTasks validates all inputs and, only if every one is valid,
// creates them one by one. Creation failures are reported per task in the
// result and do not stop the batch.
func (c *Client) BatchCreateTasks(ctx context.Context, inputs []TaskInput) (batch.BatchResult, error) {
	if err := ValidateBatch(inputs); err != nil {
		return batch.BatchResult{}, newInputError(err)
	}

	br := batch.Process(inputs,
		func(in TaskInput) string { return in.Title },
		func(in TaskInput) (string, error) {
			task, err := c.createTask(ctx, in)
			if err != nil {
				return "", err
			}
			return task.ID, nil
		},
	)

	c.logger.Info("Batch task creation finished", "total", br.Total, "successful", br.Successful, "failed", br.Failed)
	return br, nil
}
