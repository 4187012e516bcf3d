// Package exitcode exports devserve's exit status numbers.
package exitcode

const (
	// Success is returned when devserve finished without error,
	// including a shutdown triggered by an interrupt signal.
	Success = iota
	// StartupError is returned for any fatal error, whether from
	// the command line or from starting the server.
	StartupError
)
