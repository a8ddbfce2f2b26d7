// Package batch runs an operation over a list of items and aggregates the
// per-item outcomes. A failing item never stops the batch.
package batch
