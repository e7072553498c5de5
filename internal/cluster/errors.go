package cluster

import (
	"errors"
	"fmt"
	"time"

	"github.com/kubeseed/kubeseed/internal/platform/ssh"
	"github.com/kubeseed/kubeseed/internal/util/netutil"
)

// RemoteError is a transient remote failure: a command or connection failed.
// It is retried per the configured retry policy; exhaustion escalates to a
// fatal bootstrap failure for the node.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates a remote session or polling wait exceeded its bound.
// It is distinct from a command failure and always fatal for the node.
type TimeoutError struct {
	Stage string
	Bound time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s: %v", e.Stage, e.Bound, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// CredentialError indicates the join credential could not be produced or
// parsed. It is fatal and aborts all pending secondary joins.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("join credential issuance failed: %v", e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// StepError indicates a critical bootstrap step failed.
// Non-critical step failures are logged and never surface as errors.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a timeout failure, either a classified
// TimeoutError or one of the underlying transport timeout sentinels.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te) ||
		errors.Is(err, netutil.ErrWaitTimeout) ||
		errors.Is(err, ssh.ErrSessionTimeout)
}

// IsCredentialFailure reports whether err is a credential issuance failure.
func IsCredentialFailure(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}

// IsCriticalStepFailure reports whether err is a failed critical step.
func IsCriticalStepFailure(err error) bool {
	var se *StepError
	return errors.As(err, &se)
}
