// Package exitcodes defines the standard exit codes used by op-specrunner.
package exitcodes

// Exit code constants used by op-specrunner
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every suite run passes
// * SuiteFailure (1): Used when one or more suites fail
// * RuntimeErr (2): Used for runtime errors such as an unreachable harness
//   server, a browser binary that cannot be spawned, or configuration issues
const (
	Success      = 0 // All suites pass
	SuiteFailure = 1 // Suite failures
	RuntimeErr   = 2 // Runtime errors
)
