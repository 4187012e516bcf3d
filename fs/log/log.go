// Package log provides the log sinks for devserve
package log

import (
	"context"
	"io"
	"os"

	"github.com/localdev/devserve/fs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options contains options for controlling the logging
type Options struct {
	File              string // Log everything to this file
	MaxSize           int    // Max size of log file in MiB before rotation, 0 to not rotate
	MaxBackups        int    // Max number of rotated log files to keep
	Compress          bool   // Set to compress rotated log files
	LogSystemdSupport bool   // set if using systemd logging
	UseSyslog         bool   // send the log to syslog
	SyslogFacility    string // facility to log to syslog with
}

// Opt is the options for the logger
var Opt = Options{
	SyslogFacility: "DAEMON",
}

// Text format used when logging to a terminal or a file
var textFormatter = &logrus.TextFormatter{
	FullTimestamp:   true,
	TimestampFormat: "2006/01/02 15:04:05",
}

// logFile is the log file opened by InitLogging if any
var logFile io.Closer

// InitLogging starts the logging as per the command line flags
func InitLogging() error {
	ci := fs.GetConfig(context.Background())
	logger := logrus.StandardLogger()
	if Opt.UseSyslog && Redirected() {
		return errors.New("can't use --syslog and --log-file together")
	}

	// Log file output
	var w io.Writer = os.Stderr
	if Opt.File != "" {
		if Opt.MaxSize <= 0 {
			// No log rotation - just open the file as normal
			f, err := os.OpenFile(Opt.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)
			if err != nil {
				return errors.Wrap(err, "failed to open log file")
			}
			logFile = f
			w = f
		} else {
			// Log rotation active
			f := &lumberjack.Logger{
				Filename:   Opt.File,
				MaxSize:    Opt.MaxSize, // MiB
				MaxBackups: Opt.MaxBackups,
				Compress:   Opt.Compress,
				LocalTime:  true, // format log file names in localtime
			}
			logFile = f
			w = f
		}
	}
	logger.SetOutput(w)

	var formatter logrus.Formatter = textFormatter
	if ci.UseJSONLog {
		formatter = &logrus.JSONFormatter{}
	}

	// Activate systemd logger support if we are running under
	// systemd and output is going to stderr
	if !Redirected() && !ci.UseJSONLog && isJournalStream() {
		Opt.LogSystemdSupport = true
	}

	if Opt.LogSystemdSupport {
		formatter = startSystemdLog(formatter)
	}
	logger.SetFormatter(formatter)

	if Opt.UseSyslog {
		if err := startSysLog(logger); err != nil {
			return err
		}
	}

	fs.Debugf("devserve", "Version %q starting with parameters %q", fs.Version, os.Args)
	if Opt.LogSystemdSupport {
		fs.Debugf("devserve", "systemd logging support activated")
	}
	return nil
}

// Close stops any log file or syslog output started by InitLogging
func Close() error {
	logger := logrus.StandardLogger()
	logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.SetOutput(os.Stderr)
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Redirected returns true if the log has been redirected from stderr
func Redirected() bool {
	return Opt.File != ""
}
