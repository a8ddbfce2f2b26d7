package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// Resource identifiers embedded in API paths would create one time series per
// project or task; NormalizePath folds them into placeholders.

// pathCollections are the path segments whose following segment is an identifier.
var pathCollections = map[string]bool{
	"project": true,
	"task":    true,
}

// NormalizePath replaces identifiers in a TickTick API path with "{id}".
//
// Example:
//
//	NormalizePath("/project/abc/task/t1/complete")  // "/project/{id}/task/{id}/complete"
//	NormalizePath("/project")                       // "/project"
//	NormalizePath("/project/abc/data?x=1")          // "/project/{id}/data"
//	NormalizePath("")                               // "unknown"
func NormalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "unknown"
	}

	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if pathCollections[segments[i-1]] && segments[i] != "" {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// Common operation names used for spans and command metrics.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationDelete   = "delete"
	OperationComplete = "complete"
	OperationQuery    = "query"
)
