//go:build windows

package http

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// isAddrInUse returns true if err means the address is already bound
func isAddrInUse(err error) bool {
	return errors.Is(err, windows.WSAEADDRINUSE)
}
