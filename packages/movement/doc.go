// Package movement describes the records the strip board persists in
// browser storage: movements, their optional formation and its elements,
// wrapped in a versioned envelope.
//
// The strip board owns these structures. stripcheck only builds literal
// fixtures from them and validates blobs against the envelope schema; it
// never derives formation state itself.
package movement
