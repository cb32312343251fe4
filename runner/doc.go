// Package runner implements the scenario execution engine.
//
// The main components are:
//   - Step executor: runs one step function under a timeout, retrying per the backoff policy
//   - Scenario executor: drives setup, steps, and teardown for one scenario and decides its result
//   - Concurrency gate: bounds how many scenarios execute at once
//   - Coordinator: schedules scenarios through the gate, enforces the failure budget, and aggregates the run summary
//   - Reporter: the callback contract lifecycle events are streamed through
//
// Scenario and step failures are data, carried in results and the summary.
// Run returns an error only for invalid options, a failing reporter, or
// cancellation of the run context.
package runner
