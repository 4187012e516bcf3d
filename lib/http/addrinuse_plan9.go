//go:build plan9

package http

import "strings"

// isAddrInUse returns true if err means the address is already bound
//
// plan9 reports errors as strings only.
func isAddrInUse(err error) bool {
	return strings.Contains(err.Error(), "address in use")
}
