// Package exitcodes defines the standard exit codes used by drover.
package exitcodes

// Exit code constants used by drover
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every executed scenario passed or was skipped
// * RunFailure (1): Used when one or more scenarios failed or errored
// * RuntimeErr (2): Used for usage and runtime errors such as bad flags, a
//   broken run plan, panics, or reporter failures
// * NotFound (4): Used when no scenarios are registered or none match the
//   given selectors
const (
	Success    = 0 // All scenarios pass
	RunFailure = 1 // Scenario failures
	RuntimeErr = 2 // Usage or runtime errors
	NotFound   = 4 // No scenarios matched
)
