package hcloud

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"locked", hcloud.Error{Code: hcloud.ErrorCodeLocked, Message: "resource is locked"}, true},
		{"conflict", hcloud.Error{Code: hcloud.ErrorCodeConflict, Message: "conflict occurred"}, true},
		{"rate limited", hcloud.Error{Code: hcloud.ErrorCodeRateLimitExceeded, Message: "slow down"}, true},
		{"wrapped locked", fmt.Errorf("create: %w", hcloud.Error{Code: hcloud.ErrorCodeLocked}), true},
		{"invalid input", hcloud.Error{Code: hcloud.ErrorCodeInvalidInput, Message: "bad field"}, false},
		{"not found", hcloud.Error{Code: hcloud.ErrorCodeNotFound, Message: "gone"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsInvalidParameter(t *testing.T) {
	t.Parallel()

	assert.True(t, IsInvalidParameter(hcloud.Error{Code: hcloud.ErrorCodeInvalidInput}))
	assert.True(t, IsInvalidParameter(hcloud.Error{Code: hcloud.ErrorCodeNotFound}))
	assert.False(t, IsInvalidParameter(hcloud.Error{Code: hcloud.ErrorCodeLocked}))
	assert.False(t, IsInvalidParameter(nil))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(hcloud.Error{Code: hcloud.ErrorCodeNotFound}))
	assert.False(t, IsNotFound(hcloud.Error{Code: hcloud.ErrorCodeConflict}))
	assert.False(t, IsNotFound(errors.New("other")))
}
