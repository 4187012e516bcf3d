// Package fs holds the shared configuration, logging and content type
// helpers used by devserve
package fs

import (
	"context"
	"sync"
)

// Version of devserve
var Version = "v1.0.0-DEV"

// ConfigInfo is the global config for logging
type ConfigInfo struct {
	LogLevel   LogLevel
	UseJSONLog bool
}

// NewConfig creates a new config with everything set to the default
// value.
func NewConfig() *ConfigInfo {
	return &ConfigInfo{
		LogLevel: LogLevelNotice,
	}
}

type configContextKeyType struct{}

// Context key for config
var configContextKey = configContextKeyType{}

var (
	globalConfigMu sync.RWMutex
	globalConfig   = NewConfig()
)

// GetConfig returns the global or context sensitive config
func GetConfig(ctx context.Context) *ConfigInfo {
	if ctx == nil {
		return getGlobalConfig()
	}
	c := ctx.Value(configContextKey)
	if c == nil {
		return getGlobalConfig()
	}
	return c.(*ConfigInfo)
}

func getGlobalConfig() *ConfigInfo {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetConfig replaces the global config, returning the old one
func SetConfig(ci *ConfigInfo) *ConfigInfo {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	old := globalConfig
	globalConfig = ci
	return old
}

// AddConfig returns a mutable config structure based on a shallow
// copy of that found in ctx and returns a new context with that added
// to it.
func AddConfig(ctx context.Context) (context.Context, *ConfigInfo) {
	c := GetConfig(ctx)
	cCopy := new(ConfigInfo)
	*cCopy = *c
	newCtx := context.WithValue(ctx, configContextKey, cCopy)
	return newCtx, cCopy
}
