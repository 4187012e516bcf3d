// Package http provides the HTTP server devserve serves files with
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/localdev/devserve/fs"
	"github.com/localdev/devserve/lib/atexit"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// Help describes the http server options to add to the command help.
var Help = `### Server options

Use ` + "`--port`" + ` to set the first port to try, 8000 by default. If
that port is already in use the next port up is tried, and so on until
a free one is found or ` + "`--max-port`" + ` is passed. You can use
port 0 to let the OS choose an available port.

Use ` + "`--host`" + ` to specify which IP address the server should
listen on, eg ` + "`--host 127.0.0.1`" + ` to only listen on localhost.
By default it listens on all interfaces.

` + "`--server-read-timeout` and `--server-write-timeout`" + ` can be used to
control the timeouts on the server.  Note that this is the total time
for a transfer.

` + "`--max-header-bytes`" + ` controls the maximum number of bytes the server will
accept in the HTTP header.

` + "`--baseurl`" + ` controls the URL prefix that files are served from.  By
default files are served from the root.  Leading and trailing "/" on
` + "`--baseurl`" + ` are added automatically.

### Socket activation

Instead of binding a port, devserve will listen to all FDs passed by
the service manager, if any, and ignore ` + "`--port`" + `.
`

// Middleware function signature required by chi.Router.Use()
type Middleware func(http.Handler) http.Handler

// Config contains options for the http Server
type Config struct {
	Host               string        // IP address to bind to, "" for all interfaces
	Port               int           // First port to try
	MaxPort            int           // Last port to try
	BaseURL            string        // prefix to strip from URLs
	ServerReadTimeout  time.Duration // Timeout for server reading data
	ServerWriteTimeout time.Duration // Timeout for server writing data
	MaxHeaderBytes     int           // Maximum size of request header
	AllowOrigin        string        // AllowOrigin sets the Access-Control-Allow-Origin header
}

// AddFlagsPrefix adds flags for the http server
func (cfg *Config) AddFlagsPrefix(flagSet *pflag.FlagSet, prefix string) {
	shortPort := ""
	if prefix == "" {
		shortPort = "p"
	}
	flagSet.IntVarP(&cfg.Port, prefix+"port", shortPort, cfg.Port, "Port to serve on, the next free port up is used if it is busy")
	flagSet.StringVarP(&cfg.Host, prefix+"host", "", cfg.Host, "IP address to bind to, leave blank for all interfaces")
	flagSet.IntVarP(&cfg.MaxPort, prefix+"max-port", "", cfg.MaxPort, "Highest port to try if the port is busy")
	flagSet.DurationVarP(&cfg.ServerReadTimeout, prefix+"server-read-timeout", "", cfg.ServerReadTimeout, "Timeout for server reading data")
	flagSet.DurationVarP(&cfg.ServerWriteTimeout, prefix+"server-write-timeout", "", cfg.ServerWriteTimeout, "Timeout for server writing data")
	flagSet.IntVarP(&cfg.MaxHeaderBytes, prefix+"max-header-bytes", "", cfg.MaxHeaderBytes, "Maximum size of request header")
	flagSet.StringVarP(&cfg.BaseURL, prefix+"baseurl", "", cfg.BaseURL, "Prefix for URLs - leave blank for root")
	flagSet.StringVarP(&cfg.AllowOrigin, prefix+"allow-origin", "", cfg.AllowOrigin, "Origin which cross-domain request (CORS) can be executed from")
}

// BaseURLPath returns BaseURL as "/prefix", or "" to serve from the root
func (cfg *Config) BaseURLPath() string {
	baseURL := strings.Trim(cfg.BaseURL, "/")
	if baseURL == "" {
		return ""
	}
	return "/" + baseURL
}

// DefaultCfg is the default values used for Config
func DefaultCfg() Config {
	return Config{
		Port:               8000,
		MaxPort:            MaxPort,
		ServerReadTimeout:  1 * time.Hour,
		ServerWriteTimeout: 1 * time.Hour,
		MaxHeaderBytes:     http.DefaultMaxHeaderBytes,
	}
}

type instance struct {
	url        string
	listener   net.Listener
	httpServer *http.Server
}

func (s instance) serve() error {
	err := s.httpServer.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	if err != nil {
		fs.Errorf(nil, "%s: unexpected error: %s", s.listener.Addr(), err.Error())
	}
	return err
}

// Server contains info about the running http server
type Server struct {
	group        *errgroup.Group
	mux          chi.Router
	instances    []instance
	cfg          Config
	onPortBusy   PortBusyFn
	mu           sync.Mutex
	atexitHandle atexit.FnHandle
	shutdownOnce sync.Once
}

// Option allows customizing the server
type Option func(*Server)

// WithConfig option applies the Config to the server, overriding defaults
func WithConfig(cfg Config) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithPortBusy option sets the function called each time the bind
// retry loop finds a port in use
func WithPortBusy(fn PortBusyFn) Option {
	return func(s *Server) {
		s.onPortBusy = fn
	}
}

// For a given listener construct an instance.
// The url string ends up in the `url` field of the `instance`.
func newInstance(ctx context.Context, s *Server, listener net.Listener, url string) instance {
	return instance{
		url:      url,
		listener: listener,
		httpServer: &http.Server{
			Handler:           s.mux,
			ReadTimeout:       s.cfg.ServerReadTimeout,
			WriteTimeout:      s.cfg.ServerWriteTimeout,
			MaxHeaderBytes:    s.cfg.MaxHeaderBytes,
			ReadHeaderTimeout: 10 * time.Second, // time to send the headers
			IdleTimeout:       60 * time.Second, // time to keep idle connections open
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		},
	}
}

// NewServer makes a new http server and binds its listeners.
//
// Listening sockets passed in by the service manager are used if
// present, otherwise Host:Port is bound, moving up a port at a time
// while the port is in use.
func NewServer(ctx context.Context, options ...Option) (*Server, error) {
	s := &Server{
		mux: chi.NewRouter(),
		cfg: DefaultCfg(),
	}

	for _, opt := range options {
		opt(s)
	}

	err := s.cfg.checkPorts()
	if err != nil {
		return nil, err
	}

	// Build base router
	s.mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
	s.mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	s.cfg.BaseURL = s.cfg.BaseURLPath()
	if s.cfg.BaseURL != "" {
		s.mux.Use(MiddlewareStripPrefix(s.cfg.BaseURL))
	}

	s.mux.Use(MiddlewareCORS(s.cfg.AllowOrigin))

	// (Only) listen on FDs provided by the service manager, if any.
	sdListeners, err := getInheritedListeners()
	if err != nil {
		return nil, errors.Wrap(err, "unable to acquire listeners")
	}
	if len(sdListeners) != 0 {
		for _, listener := range sdListeners {
			url := fmt.Sprintf("http://%s%s/", listener.Addr().String(), s.cfg.BaseURL)
			s.instances = append(s.instances, newInstance(ctx, s, listener, url))
		}
		fs.Infof(nil, "Using %d listener(s) from the service manager", len(sdListeners))
		return s, nil
	}

	listener, err := listenTCP(ctx, s.cfg.Host, s.cfg.Port, s.cfg.MaxPort, s.onPortBusy)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("http://%s%s/", listener.Addr().String(), s.cfg.BaseURL)
	s.instances = append(s.instances, newInstance(ctx, s, listener, url))

	return s, nil
}

// Serve starts the HTTP server on each listener
func (s *Server) Serve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group != nil {
		return
	}
	s.group = new(errgroup.Group)
	for _, ii := range s.instances {
		fs.Debugf(nil, "Serving on %s", ii.url)
		s.group.Go(ii.serve)
	}
	// Install an atexit handler to shutdown gracefully
	s.atexitHandle = atexit.Register(func() { _ = s.Shutdown() })
}

// Wait blocks while the server is serving requests
//
// It returns the first unexpected error from any of the listeners.
func (s *Server) Wait() error {
	s.mu.Lock()
	group := s.group
	s.mu.Unlock()
	if group == nil {
		return nil
	}
	return group.Wait()
}

// Router returns the server base router
func (s *Server) Router() chi.Router {
	return s.mux
}

// Time to wait to Shutdown an HTTP server
const gracefulShutdownTime = 10 * time.Second

// Shutdown gracefully shuts down the server
//
// It is safe to call more than once.
func (s *Server) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		// Stop the atexit handler
		if s.atexitHandle != nil {
			atexit.Unregister(s.atexitHandle)
			s.atexitHandle = nil
		}
		s.mu.Unlock()
		for _, ii := range s.instances {
			expiry := time.Now().Add(gracefulShutdownTime)
			ctx, cancel := context.WithDeadline(context.Background(), expiry)
			if err := ii.httpServer.Shutdown(ctx); err != nil {
				fs.Logf(nil, "error shutting down server: %s", err)
			}
			cancel()
			// The listener is only closed by Shutdown if Serve was called
			_ = ii.listener.Close()
		}
	})
	_ = s.Wait()
	return nil
}

// Port returns the TCP port of the first listener or 0 if it isn't
// a TCP listener
func (s *Server) Port() int {
	for _, ii := range s.instances {
		if addr, ok := ii.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return 0
}

// URLs returns all configured URLS
func (s *Server) URLs() []string {
	var out []string
	for _, ii := range s.instances {
		if ii.listener.Addr().Network() == "unix" {
			continue
		}
		out = append(out, ii.url)
	}
	return out
}
