// =============================================================================
// Order Report Summary - Main Entry Point
// =============================================================================
//
// This is the main entry point for the order report CLI. It delegates command
// execution to the cmd package.
//
// USAGE:
//   orders process    - Validate, price and summarize every daily report
//   orders generate   - Write fake daily reports into the data directory
//   orders init       - Write a default config.yaml
//   orders version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (validation, reports, summary, I/O)
//   - pkg/           : Shared file system utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/order-report-summary/cmd"
)

func main() {
	cmd.Execute()
}
