// Package cmdtest runs end-to-end tests of the devserve binary
//
// The test binary executes itself as devserve so the tests can check
// the output and exit code of real processes.
package cmdtest

import "github.com/localdev/devserve/cmd"

// main runs devserve, it is called by TestMain in the child process
func main() {
	cmd.Main()
}
