// Package runner executes stripcheck scenarios against a browser driver.
//
// It provides functionality for:
//   - Running scenarios strictly in order, one record per scenario
//   - Recording checks, notes and screenshot references per scenario
//   - Folding console and page errors into the pass condition
//   - Mapping locator timeouts and lost browser sessions onto FAIL records
//   - Filtering scenarios by ID pattern
//   - Scenario duration percentiles
//
// A scenario never aborts the run. When the browser session is lost, the
// remaining scenarios are recorded as not run.
package runner
