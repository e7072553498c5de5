package cluster

import (
	"context"
	"fmt"

	"github.com/kubeseed/kubeseed/internal/platform/ssh"
)

// Logger is the minimal logging surface the bootstrap core needs.
// Satisfied by the provisioning observer.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Step is an ordered, named shell operation. Steps are written to be safe to
// re-run. A non-critical step's failure is logged but does not abort the
// sequence; a critical step's failure aborts the node's bootstrap.
type Step struct {
	Name     string
	Command  string
	Critical bool
}

// StepRunner executes ordered step lists on a single remote host.
type StepRunner struct {
	comm ssh.Communicator
	log  Logger
	host string
}

// NewStepRunner creates a runner for the named host.
func NewStepRunner(comm ssh.Communicator, log Logger, host string) *StepRunner {
	return &StepRunner{comm: comm, log: log, host: host}
}

// Run executes the steps in order. It returns a StepError for the first
// critical failure; non-critical failures are logged and skipped. A session
// timeout aborts regardless of the step's criticality.
func (r *StepRunner) Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		r.log.Printf("[%s] step %d/%d: %s", r.host, i+1, len(steps), step.Name)

		if _, err := r.comm.Execute(ctx, step.Command); err != nil {
			if IsTimeout(err) {
				return fmt.Errorf("step %q on %s: %w", step.Name, r.host, err)
			}

			if !step.Critical {
				r.log.Printf("[%s] non-critical step %q failed, continuing: %v", r.host, step.Name, err)
				continue
			}

			return &StepError{Step: step.Name, Err: &RemoteError{Op: "execute on " + r.host, Err: err}}
		}
	}
	return nil
}
