// Package logflags implements command line flags to set up the log
package logflags

import (
	"github.com/localdev/devserve/fs"
	"github.com/localdev/devserve/fs/log"
	"github.com/spf13/pflag"
)

// Flag values which are turned into the config by SetFlags
var (
	verbose int
	quiet   bool
)

// AddFlags adds the log flags to the flagSet
func AddFlags(ci *fs.ConfigInfo, flagSet *pflag.FlagSet) {
	flagSet.CountVarP(&verbose, "verbose", "v", "Print lots more stuff (repeat for more)")
	flagSet.BoolVarP(&quiet, "quiet", "q", false, "Print as little stuff as possible")
	flagSet.VarP(&ci.LogLevel, "log-level", "", "Log level DEBUG|INFO|NOTICE|ERROR")
	flagSet.BoolVarP(&ci.UseJSONLog, "use-json-log", "", ci.UseJSONLog, "Use json log format")
	flagSet.StringVarP(&log.Opt.File, "log-file", "", log.Opt.File, "Log everything to this file")
	flagSet.IntVarP(&log.Opt.MaxSize, "log-file-max-size", "", log.Opt.MaxSize, "Maximum size of the log file in MiB before it's rotated (0 to disable)")
	flagSet.IntVarP(&log.Opt.MaxBackups, "log-file-max-backups", "", log.Opt.MaxBackups, "Maximum number of old log files to retain")
	flagSet.BoolVarP(&log.Opt.Compress, "log-file-compress", "", log.Opt.Compress, "If set, compress rotated log files using gzip")
	flagSet.BoolVarP(&log.Opt.LogSystemdSupport, "log-systemd", "", log.Opt.LogSystemdSupport, "Activate systemd integration for the logger")
	flagSet.BoolVarP(&log.Opt.UseSyslog, "syslog", "", log.Opt.UseSyslog, "Use Syslog for logging")
	flagSet.StringVarP(&log.Opt.SyslogFacility, "syslog-facility", "", log.Opt.SyslogFacility, "Facility for syslog, e.g. KERN,USER,...")
}

// SetFlags converts any flags into config which weren't straight forward
func SetFlags(ci *fs.ConfigInfo, flagSet *pflag.FlagSet) error {
	if verbose >= 2 {
		ci.LogLevel = fs.LogLevelDebug
	} else if verbose >= 1 {
		ci.LogLevel = fs.LogLevelInfo
	}
	if quiet {
		if verbose > 0 {
			return errInvalidVerboseQuiet
		}
		ci.LogLevel = fs.LogLevelError
	}
	logLevelFlag := flagSet.Lookup("log-level")
	if logLevelFlag != nil && logLevelFlag.Changed {
		if verbose > 0 || quiet {
			return errInvalidLogLevel
		}
	}
	return nil
}
