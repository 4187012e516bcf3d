// Syslog interface for non-Unix variants only

//go:build windows || nacl || plan9

package log

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Syslog is not available here
func startSysLog(*logrus.Logger) error {
	return errors.Errorf("--syslog not supported on %s platform", runtime.GOOS)
}
