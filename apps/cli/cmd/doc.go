// Package cmd implements the stripcheck CLI commands using Cobra.
//
// Available commands:
//   - run: Execute the formation scenarios against a running strip board
//   - list: Display the scenarios in execution order
//   - validate: Check movement fixture files against the storage schema
//   - history: Show recent runs from the history database
//   - init: Write a starter stripcheck.yaml
//   - exit-codes: Describe the process exit codes
//   - version: Show stripcheck version information
//
// Flags of the run command default from STRIPCHECK_* environment
// variables, which may come from a .env file given with --env-file.
package cmd
