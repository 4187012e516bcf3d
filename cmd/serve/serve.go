// Package serve runs the file server until it is interrupted
package serve

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/localdev/devserve/fs"
	"github.com/localdev/devserve/lib/atexit"
	libhttp "github.com/localdev/devserve/lib/http"
	fileserve "github.com/localdev/devserve/lib/http/serve"
	"github.com/localdev/devserve/lib/systemd"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/pflag"
)

// Help describes the serving options
var Help = `### Files

Files are served from the directory given with ` + "`--dir`" + `, the current
directory by default. A request for a directory serves its index.html
(or index.htm) if there is one and a listing of its contents otherwise.
Anything outside the directory is never served. A leading ` + "`~`" + ` in
` + "`--dir`" + ` is expanded to the home directory.

The Content-Type of a file comes from its extension. ` + "`.js`" + ` files are
always served as application/javascript and files with an unknown
extension as application/octet-stream. Use ` + "`--mime-type .ext=type`" + ` to
add or change the type for other extensions.

Use ` + "`--open-browser`" + ` to open the served URL in the default browser
once the server has started.

` + libhttp.Help

// Options contains everything needed to run the server
type Options struct {
	HTTP        libhttp.Config
	Dir         string            // directory to serve
	MimeTypes   map[string]string // extra extension to content type mappings
	OpenBrowser bool              // open the served URL in a browser
}

// DefaultOpt is the default values used for Options
var DefaultOpt = Options{
	HTTP: libhttp.DefaultCfg(),
	Dir:  ".",
}

// Opt is the options set by the command line flags
var Opt = DefaultOpt

// AddFlags adds the flags for the server to the flagSet
func AddFlags(flagSet *pflag.FlagSet, opt *Options) {
	opt.HTTP.AddFlagsPrefix(flagSet, "")
	flagSet.StringVarP(&opt.Dir, "dir", "d", opt.Dir, "Directory to serve")
	flagSet.StringToStringVarP(&opt.MimeTypes, "mime-type", "", opt.MimeTypes, "Content type for an extension as .ext=type (may be repeated)")
	flagSet.BoolVarP(&opt.OpenBrowser, "open-browser", "", opt.OpenBrowser, "Open the served URL in the default browser")
}

// openBrowser opens url in the default browser
var openBrowser = open.Start

// Run serves opt.Dir over HTTP until the server is shut down.
//
// The server shuts down when the atexit handlers run, which happens
// on SIGINT. Progress messages are written to out.
func Run(ctx context.Context, out io.Writer, opt *Options) error {
	mimes, err := fs.NewMimeTable(opt.MimeTypes)
	if err != nil {
		return errors.Wrap(err, "bad --mime-type")
	}
	dir, err := homedir.Expand(opt.Dir)
	if err != nil {
		return errors.Wrap(err, "bad --dir")
	}
	htmlTemplate, err := libhttp.GetTemplate()
	if err != nil {
		return err
	}
	files, err := fileserve.NewFiles(dir, mimes, htmlTemplate)
	if err != nil {
		return err
	}

	var finaliseOnce sync.Once
	finalise := func() {
		finaliseOnce.Do(func() {
			_, _ = fmt.Fprintln(out, "\nShutting down server...")
		})
	}
	// Covers an interrupt while the port is being found
	bindHandle := atexit.Register(finalise)
	defer atexit.Unregister(bindHandle)

	s, err := libhttp.NewServer(ctx,
		libhttp.WithConfig(opt.HTTP),
		libhttp.WithPortBusy(func(busy, next int) {
			_, _ = fmt.Fprintf(out, "Port %d is in use, trying port %d\n", busy, next)
		}),
	)
	if err != nil {
		return err
	}

	router := s.Router()
	router.Get("/*", files.ServeHTTP)
	router.Head("/*", files.ServeHTTP)

	s.Serve()
	sdStopping := systemd.Notify()
	defer sdStopping()

	// Runs before the server is shut down as it is registered after it
	fnHandle := atexit.Register(finalise)
	defer atexit.Unregister(fnHandle)

	startURL := fmt.Sprintf("http://localhost:%d", s.Port())
	_, _ = fmt.Fprintf(out, "Server started at %s\n", startURL)
	for _, url := range s.URLs() {
		fs.Infof(files.Root(), "Serving on %s", url)
	}
	if err := systemd.UpdateStatus(fmt.Sprintf("Serving %s on port %d", files.Root(), s.Port())); err != nil {
		fs.Debugf(nil, "failed to update systemd status: %v", err)
	}
	if opt.OpenBrowser {
		if err := openBrowser(startURL + opt.HTTP.BaseURLPath() + "/"); err != nil {
			fs.Errorf(nil, "Failed to open browser: %v", err)
		}
	}

	return s.Wait()
}
