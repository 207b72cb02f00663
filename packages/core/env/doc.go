// Package env loads .env files into the process environment before
// stripcheck resolves its flags and configuration.
//
// Values already present in the environment always win, so a CI job can
// override anything a checked-in .env file sets.
package env
