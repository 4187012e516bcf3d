package logflags

import "github.com/pkg/errors"

var (
	errInvalidVerboseQuiet = errors.New("can't set -v and -q")
	errInvalidLogLevel     = errors.New("can't set -v or -q with --log-level")
)
