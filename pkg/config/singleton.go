package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the singleton configuration instance.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex

	initialized bool
)

// Initialize loads configuration from the specified path with environment
// overrides and stores it as the process-wide singleton. It must be called
// exactly once during warmup; a second call is a programming error and is
// rejected so partial re-initialization can never occur.
func Initialize(path string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if initialized {
		return fmt.Errorf("configuration already initialized; re-init is forbidden")
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return err
	}

	globalConfig = cfg
	initialized = true
	return nil
}

// GetConfig returns the global configuration instance, or nil before
// Initialize succeeds. Thread-safe.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the global configuration. Intended for tests only.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
	initialized = cfg != nil
}

// MustGetConfig returns the global configuration and panics if Initialize
// has not run; use only on paths that cannot be reached before warmup.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
