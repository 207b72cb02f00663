// Package assertions evaluates the checks a scenario records against
// observed DOM and storage state.
//
// Supported operators:
//   - Equality (==, !=), with numeric normalization so 3 == 3.0 == "3"
//   - Substring checks (contains, !contains)
//   - Presence (exists, !exists); a JSON null counts as absent
//   - Emptiness (empty, !empty) for strings, arrays and objects
//   - Length, membership (in), regular expressions (matches) and JSON type checks
//
// Actual values may be plain Go values or gjson.Result; the latter are
// unwrapped before comparison.
package assertions
