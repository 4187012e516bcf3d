// Package flags sets command line flags from the environment
package flags

import (
	"os"
	"strings"

	"github.com/localdev/devserve/fs"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// EnvPrefix starts the name of every environment variable read
const EnvPrefix = "DEVSERVE_"

// OptionToEnv converts an option name, e.g. "log-level" to the
// environment variable which sets it, e.g. "DEVSERVE_LOG_LEVEL"
func OptionToEnv(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// setValueFromEnv sets the value and default of the flag from the
// environment if possible. The value may be overridden when the
// command line is parsed.
func setValueFromEnv(flags *pflag.FlagSet, flag *pflag.Flag) error {
	envKey := OptionToEnv(flag.Name)
	envValue, found := os.LookupEnv(envKey)
	if !found {
		return nil
	}
	err := flags.Set(flag.Name, envValue)
	if err != nil {
		return errors.Wrapf(err, "invalid value when setting --%s from environment variable %s=%q", flag.Name, envKey, envValue)
	}
	fs.Debugf(nil, "Setting --%s %q from environment variable %s=%q", flag.Name, flag.Value, envKey, envValue)
	flag.DefValue = envValue
	return nil
}

// SetFromEnv sets every flag in flags which has an environment
// variable set. Call it before the command line is parsed so the
// command line takes precedence.
func SetFromEnv(flags *pflag.FlagSet) (err error) {
	flags.VisitAll(func(flag *pflag.Flag) {
		if err == nil {
			err = setValueFromEnv(flags, flag)
		}
	})
	return err
}
