//go:build !windows && !plan9

package http

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// isAddrInUse returns true if err means the address is already bound
func isAddrInUse(err error) bool {
	return errors.Is(err, unix.EADDRINUSE)
}
