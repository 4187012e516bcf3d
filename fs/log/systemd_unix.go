// Systemd interface for Unix variants only

//go:build !windows && !nacl && !plan9

package log

import (
	"os"

	sysd "github.com/iguanesolutions/go-systemd/v5"
	sysdjournald "github.com/iguanesolutions/go-systemd/v5/journald"
	"github.com/sirupsen/logrus"
)

var logrusLevelToSystemdPrefix = map[logrus.Level]string{
	logrus.PanicLevel: sysdjournald.EmergPrefix,
	logrus.FatalLevel: sysdjournald.CritPrefix,
	logrus.ErrorLevel: sysdjournald.ErrPrefix,
	logrus.WarnLevel:  sysdjournald.NoticePrefix,
	logrus.InfoLevel:  sysdjournald.InfoPrefix,
	logrus.DebugLevel: sysdjournald.DebugPrefix,
	logrus.TraceLevel: sysdjournald.DebugPrefix,
}

// systemdFormatter prefixes each entry with the journald priority
type systemdFormatter struct {
	logrus.Formatter
}

// Format the entry with the journald prefix in front
func (f systemdFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	out, err := f.Formatter.Format(entry)
	if err != nil {
		return nil, err
	}
	return append([]byte(systemdLogPrefix(entry.Level)), out...), nil
}

// Enables systemd logs if configured or if auto detected
func startSystemdLog(formatter logrus.Formatter) logrus.Formatter {
	if tf, ok := formatter.(*logrus.TextFormatter); ok {
		// journald adds its own timestamps
		plain := *tf
		plain.DisableTimestamp = true
		formatter = &plain
	}
	return systemdFormatter{Formatter: formatter}
}

func systemdLogPrefix(l logrus.Level) string {
	return logrusLevelToSystemdPrefix[l]
}

// isJournalStream reports whether stderr is connected to the journal
func isJournalStream() bool {
	if _, ok := sysd.GetInvocationID(); !ok {
		return false
	}
	_, ok := os.LookupEnv("JOURNAL_STREAM")
	return ok
}
