// Package cmd implements the devserve command
//
// It is in a sub package so it's internals can be re-used elsewhere
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/localdev/devserve/cmd/serve"
	"github.com/localdev/devserve/fs"
	"github.com/localdev/devserve/fs/config/flags"
	fslog "github.com/localdev/devserve/fs/log"
	"github.com/localdev/devserve/fs/log/logflags"
	"github.com/localdev/devserve/lib/atexit"
	"github.com/localdev/devserve/lib/buildinfo"
	"github.com/localdev/devserve/lib/exitcode"
	"github.com/spf13/cobra"
)

// Globals
var (
	// Flags
	version bool

	// exit is os.Exit, replaced in the tests
	exit = os.Exit
)

// Root is the main devserve command
var Root = &cobra.Command{
	Use:   "devserve",
	Short: "Serve a directory over HTTP for local development.",
	Long: `
devserve serves the files in a directory, the current one by default,
over HTTP on port 8000. If the port is in use it tries the next port up
until it finds a free one, then prints the URL it is serving on.

Any flag can also be set with an environment variable named after it,
e.g. DEVSERVE_PORT=9000 for --port 9000. Flags given on the command
line take precedence.

Press Ctrl-C to stop the server.

` + serve.Help,
	Args: cobra.NoArgs,
	Run: func(command *cobra.Command, args []string) {
		if version {
			ShowVersion(command.OutOrStdout())
			return
		}
		Run(command, func() error {
			return serve.Run(context.Background(), command.OutOrStdout(), &serve.Opt)
		})
	},
}

func init() {
	ci := fs.GetConfig(context.Background())
	flagSet := Root.Flags()
	serve.AddFlags(flagSet, &serve.Opt)
	logflags.AddFlags(ci, flagSet)
	flagSet.BoolVarP(&version, "version", "V", false, "Print the version number")
}

// ShowVersion prints the version to out
func ShowVersion(out io.Writer) {
	osVersion, osKernel := buildinfo.GetOSVersion()
	if osVersion == "" {
		osVersion = "unknown"
	}
	if osKernel == "" {
		osKernel = "unknown"
	}

	linking, tagString := buildinfo.GetLinkingAndTags()

	_, _ = fmt.Fprintf(out, "devserve %s\n", fs.Version)
	_, _ = fmt.Fprintf(out, "- os/version: %s\n", osVersion)
	_, _ = fmt.Fprintf(out, "- os/kernel: %s\n", osKernel)
	_, _ = fmt.Fprintf(out, "- os/type: %s\n", runtime.GOOS)
	_, _ = fmt.Fprintf(out, "- os/arch: %s\n", runtime.GOARCH)
	_, _ = fmt.Fprintf(out, "- go/version: %s\n", runtime.Version())
	_, _ = fmt.Fprintf(out, "- go/linking: %s\n", linking)
	_, _ = fmt.Fprintf(out, "- go/tags: %s\n", tagString)
}

// initConfig starts the logger from the command line flags
func initConfig(command *cobra.Command) error {
	ci := fs.GetConfig(context.Background())

	// Finish parsing any command line flags
	if err := logflags.SetFlags(ci, command.Flags()); err != nil {
		return err
	}

	// Start the logger
	if err := fslog.InitLogging(); err != nil {
		return err
	}
	atexit.Register(func() {
		if err := fslog.Close(); err != nil {
			fs.Errorf(nil, "Failed to close log file: %v", err)
		}
	})
	return nil
}

// Run the function with the config set up from the flags, reporting
// any error which stopped it and exiting the process with the
// matching exit code.
//
// Every fatal error is reported as "Error starting server", including
// one from a server which had already started.
func Run(command *cobra.Command, f func() error) {
	cmdErr := initConfig(command)
	if cmdErr == nil {
		cmdErr = f()
	}
	fs.Debugf(nil, "%d go routines active", runtime.NumGoroutine())

	// Report the final error and exit
	if cmdErr != nil {
		_, _ = fmt.Fprintf(command.OutOrStdout(), "Error starting server: %v\n", cmdErr)
	}
	resolveExitCode(cmdErr)
}

// resolveExitCode runs the atexit handlers then exits with the code
// for err
func resolveExitCode(err error) {
	atexit.Run()
	if err == nil {
		exit(exitcode.Success)
		return
	}
	exit(exitcode.StartupError)
}

// Main runs devserve
func Main() {
	if err := flags.SetFromEnv(Root.Flags()); err != nil {
		_, _ = fmt.Fprintf(Root.OutOrStdout(), "Error starting server: %v\n", err)
		resolveExitCode(err)
		return
	}
	if err := Root.Execute(); err != nil {
		// cobra has already printed the error and the usage
		resolveExitCode(err)
	}
}
