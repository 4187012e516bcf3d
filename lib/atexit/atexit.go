// Package atexit provides handling for functions you want called when
// the program exits unexpectedly due to a signal.
//
// You should also make sure you call Run in the normal exit path.
package atexit

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/localdev/devserve/fs"
	"github.com/localdev/devserve/lib/exitcode"
)

// FnHandle is the type of the handle returned by function `Register`
// that can be used to unregister an at-exit function
type FnHandle *func()

var (
	fnsMutex     sync.Mutex
	fns          []FnHandle
	runMutex     sync.Mutex
	exitChan     chan os.Signal
	registerOnce sync.Once
	signalled    int32

	exitMu sync.Mutex
	exitFn = os.Exit
)

// Register a function to be called on exit.
// Returns a handle which can be used to unregister the function with `Unregister`.
//
// Functions are called in the reverse order they were registered.
func Register(fn func()) FnHandle {
	fnsMutex.Lock()
	fns = append(fns, &fn)
	fnsMutex.Unlock()

	// Run AtExit handlers on exitSignals so everything gets tidied up properly
	registerOnce.Do(func() {
		exitChan = make(chan os.Signal, 1)
		signal.Notify(exitChan, exitSignals...)
		go func() {
			sig := <-exitChan
			if sig == nil {
				return
			}
			signal.Stop(exitChan)
			atomic.StoreInt32(&signalled, 1)
			fs.Infof(nil, "Signal received: %s", sig)
			Run()
			fs.Infof(nil, "Exiting...")
			exit(exitcode.Success)
		}()
	})

	return &fn
}

// Signalled returns true if an exit signal has been received
func Signalled() bool {
	return atomic.LoadInt32(&signalled) != 0
}

// Unregister a function using the handle returned by `Register`
func Unregister(handle FnHandle) {
	if handle == nil {
		return
	}
	fnsMutex.Lock()
	defer fnsMutex.Unlock()
	for i, fn := range fns {
		if fn == handle {
			fns = append(fns[:i:i], fns[i+1:]...)
			return
		}
	}
}

// Run all the at exit functions if they haven't been run already
//
// If another Run is in progress this waits for it to finish.
func Run() {
	runMutex.Lock()
	defer runMutex.Unlock()

	fnsMutex.Lock()
	todo := fns
	fns = nil
	fnsMutex.Unlock()

	for i := len(todo) - 1; i >= 0; i-- {
		(*todo[i])()
	}
}

// exit the process with code
func exit(code int) {
	exitMu.Lock()
	fn := exitFn
	exitMu.Unlock()
	fn(code)
}

// setExitFn replaces the function used to exit the process returning
// the old one
func setExitFn(fn func(int)) func(int) {
	exitMu.Lock()
	defer exitMu.Unlock()
	old := exitFn
	exitFn = fn
	return old
}
