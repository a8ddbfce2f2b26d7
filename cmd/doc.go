// Package cmd implements the command-line interface for remote-ticktick-mcp.
//
// This package provides the following commands:
//   - projects: List, inspect, create, update and delete TickTick projects
//   - tasks: Get, create, update, complete and delete tasks, create subtasks,
//     create tasks in batch and query tasks across projects
//   - check: Validate the configuration and test the TickTick API
//   - version: Display version information
//
// Every command prints JSON on stdout. Failures are printed as
// {"error": "..."} and make the process exit with status 1. Logs go to stderr.
package cmd
