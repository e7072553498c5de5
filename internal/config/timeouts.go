package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	ServerCreate time.Duration // Timeout for server creation operations
	Delete       time.Duration // Timeout for all delete operations
	Session      time.Duration // Timeout for a single remote SSH session
	APIWait      time.Duration // Timeout for waiting for the cluster API port
	NodeReady    time.Duration // Timeout for waiting for a node to report Ready

	ReadyPollInterval time.Duration // Poll interval for readiness checks
	APIProbeInterval  time.Duration // Probe interval for the API port wait

	RetryMaxAttempts  int           // Maximum number of retry attempts for cloud calls
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - KUBESEED_TIMEOUT_SERVER_CREATE (default: 10m)
//   - KUBESEED_TIMEOUT_DELETE (default: 5m)
//   - KUBESEED_TIMEOUT_SESSION (default: 15m)
//   - KUBESEED_TIMEOUT_API_WAIT (default: 10m)
//   - KUBESEED_TIMEOUT_NODE_READY (default: 10m)
//   - KUBESEED_READY_POLL_INTERVAL (default: 5s)
//   - KUBESEED_API_PROBE_INTERVAL (default: 5s)
//   - KUBESEED_RETRY_MAX_ATTEMPTS (default: 5)
//   - KUBESEED_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      parseDuration("KUBESEED_TIMEOUT_SERVER_CREATE", 10*time.Minute),
		Delete:            parseDuration("KUBESEED_TIMEOUT_DELETE", 5*time.Minute),
		Session:           parseDuration("KUBESEED_TIMEOUT_SESSION", 15*time.Minute),
		APIWait:           parseDuration("KUBESEED_TIMEOUT_API_WAIT", 10*time.Minute),
		NodeReady:         parseDuration("KUBESEED_TIMEOUT_NODE_READY", 10*time.Minute),
		ReadyPollInterval: parseDuration("KUBESEED_READY_POLL_INTERVAL", 5*time.Second),
		APIProbeInterval:  parseDuration("KUBESEED_API_PROBE_INTERVAL", 5*time.Second),
		RetryMaxAttempts:  parseInt("KUBESEED_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("KUBESEED_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
