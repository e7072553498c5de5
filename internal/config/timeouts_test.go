package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	tm := LoadTimeouts()

	assert.Equal(t, 10*time.Minute, tm.ServerCreate)
	assert.Equal(t, 5*time.Minute, tm.Delete)
	assert.Equal(t, 15*time.Minute, tm.Session)
	assert.Equal(t, 10*time.Minute, tm.APIWait)
	assert.Equal(t, 10*time.Minute, tm.NodeReady)
	assert.Equal(t, 5*time.Second, tm.ReadyPollInterval)
	assert.Equal(t, 5*time.Second, tm.APIProbeInterval)
	assert.Equal(t, 5, tm.RetryMaxAttempts)
	assert.Equal(t, 1*time.Second, tm.RetryInitialDelay)
}

func TestLoadTimeouts_EnvOverrides(t *testing.T) {
	t.Setenv("KUBESEED_TIMEOUT_SESSION", "30m")
	t.Setenv("KUBESEED_TIMEOUT_API_WAIT", "2m")
	t.Setenv("KUBESEED_RETRY_MAX_ATTEMPTS", "9")

	tm := LoadTimeouts()

	assert.Equal(t, 30*time.Minute, tm.Session)
	assert.Equal(t, 2*time.Minute, tm.APIWait)
	assert.Equal(t, 9, tm.RetryMaxAttempts)
}

func TestLoadTimeouts_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("KUBESEED_TIMEOUT_SESSION", "eventually")
	t.Setenv("KUBESEED_RETRY_MAX_ATTEMPTS", "many")

	tm := LoadTimeouts()

	assert.Equal(t, 15*time.Minute, tm.Session)
	assert.Equal(t, 5, tm.RetryMaxAttempts)
}
