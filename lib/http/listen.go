package http

import (
	"context"
	"net"
	"strconv"

	"github.com/localdev/devserve/fs"
	"github.com/pkg/errors"
)

// MaxPort is the highest TCP port number
const MaxPort = 65535

var (
	// ErrNoFreePort is returned when every port up to the maximum is in use
	ErrNoFreePort = errors.New("no free port")
	// ErrInvalidPort is returned for port numbers out of range
	ErrInvalidPort = errors.New("invalid port")
)

// PortBusyFn is called with the busy port and the port which will be
// tried next when the bind retry loop moves on.
type PortBusyFn func(busy, next int)

// checkPorts makes sure the port range in the config is usable
func (cfg *Config) checkPorts() error {
	if cfg.MaxPort < 1 || cfg.MaxPort > MaxPort {
		return errors.Wrapf(ErrInvalidPort, "max port %d must be between 1 and %d", cfg.MaxPort, MaxPort)
	}
	if cfg.Port < 0 || cfg.Port > cfg.MaxPort {
		return errors.Wrapf(ErrInvalidPort, "port %d must be between 0 and %d", cfg.Port, cfg.MaxPort)
	}
	return nil
}

// listenTCP binds a TCP listener on host:port.
//
// If the port is already in use it calls onBusy and tries the next
// port up, stopping with ErrNoFreePort after maxPort. Any other error
// is returned straight away. Port 0 lets the OS choose.
func listenTCP(ctx context.Context, host string, port, maxPort int, onBusy PortBusyFn) (net.Listener, error) {
	var lc net.ListenConfig
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err == nil {
			fs.Debugf(nil, "Bound listener to %s", listener.Addr())
			return listener, nil
		}
		if port == 0 || !isAddrInUse(err) {
			return nil, err
		}
		if port >= maxPort {
			return nil, errors.Wrapf(ErrNoFreePort, "port %d is in use and the highest port allowed is %d", port, maxPort)
		}
		fs.Debugf(nil, "Port %d unavailable: %v", port, err)
		next := port + 1
		if onBusy != nil {
			onBusy(port, next)
		}
		port = next
	}
}
