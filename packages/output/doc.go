// Package output provides formatters for displaying scenario results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: The evidence document, optionally with per-check detail
//   - JUnit: JUnit XML format for CI integration
//   - TAP: Test Anything Protocol format
//   - HTML: A standalone report linking screenshots
//   - XLSX: A spreadsheet with a results sheet and a summary sheet
//
// Each formatter implements the Formatter interface and can optionally
// implement Flushable for formats that accumulate results before output.
// WriteEvidence writes results.json regardless of the chosen format.
package output
