// Systemd interface for non-Unix variants only

//go:build windows || nacl || plan9

package log

import "github.com/sirupsen/logrus"

// Systemd logging is not available here
func startSystemdLog(formatter logrus.Formatter) logrus.Formatter {
	return formatter
}

func isJournalStream() bool {
	return false
}
