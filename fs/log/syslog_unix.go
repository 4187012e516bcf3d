// Syslog interface for Unix variants only

//go:build !windows && !nacl && !plan9

package log

import (
	"io"
	"log/syslog"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	lsyslog "github.com/sirupsen/logrus/hooks/syslog"
)

var (
	syslogFacilityMap = map[string]syslog.Priority{
		"KERN":     syslog.LOG_KERN,
		"USER":     syslog.LOG_USER,
		"MAIL":     syslog.LOG_MAIL,
		"DAEMON":   syslog.LOG_DAEMON,
		"AUTH":     syslog.LOG_AUTH,
		"SYSLOG":   syslog.LOG_SYSLOG,
		"LPR":      syslog.LOG_LPR,
		"NEWS":     syslog.LOG_NEWS,
		"UUCP":     syslog.LOG_UUCP,
		"CRON":     syslog.LOG_CRON,
		"AUTHPRIV": syslog.LOG_AUTHPRIV,
		"FTP":      syslog.LOG_FTP,
		"LOCAL0":   syslog.LOG_LOCAL0,
		"LOCAL1":   syslog.LOG_LOCAL1,
		"LOCAL2":   syslog.LOG_LOCAL2,
		"LOCAL3":   syslog.LOG_LOCAL3,
		"LOCAL4":   syslog.LOG_LOCAL4,
		"LOCAL5":   syslog.LOG_LOCAL5,
		"LOCAL6":   syslog.LOG_LOCAL6,
		"LOCAL7":   syslog.LOG_LOCAL7,
	}
)

// newSyslogHook is lsyslog.NewSyslogHook, replaced in the tests
var newSyslogHook = func(priority syslog.Priority, tag string) (logrus.Hook, error) {
	return lsyslog.NewSyslogHook("", "", priority, tag)
}

// Starts syslog, the log goes only there afterwards
func startSysLog(logger *logrus.Logger) error {
	facility, ok := syslogFacilityMap[Opt.SyslogFacility]
	if !ok {
		return errors.Errorf("unknown syslog facility %q - man syslog for list", Opt.SyslogFacility)
	}
	Me := path.Base(os.Args[0])
	hook, err := newSyslogHook(syslog.LOG_NOTICE|facility, Me)
	if err != nil {
		return errors.Wrap(err, "failed to start syslog")
	}
	logger.AddHook(hook)
	logger.SetOutput(io.Discard)
	return nil
}
