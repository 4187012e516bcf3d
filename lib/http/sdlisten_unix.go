//go:build !windows && !plan9

package http

import (
	"net"

	"github.com/coreos/go-systemd/v22/activation"
)

// getInheritedListeners returns the listening sockets passed in by the
// service manager, if any
func getInheritedListeners() ([]net.Listener, error) {
	sdListeners, err := activation.Listeners()
	if err != nil {
		return nil, err
	}
	// fds which aren't listening sockets come back as nil
	listeners := sdListeners[:0]
	for _, listener := range sdListeners {
		if listener != nil {
			listeners = append(listeners, listener)
		}
	}
	return listeners, nil
}
