package cluster

import (
	"context"
	"io"
	"log"
	"sync"
)

// fakeComm is a scripted Communicator for tests. The handler decides the
// outcome per command; a nil handler succeeds with empty output.
type fakeComm struct {
	mu       sync.Mutex
	commands []string
	uploads  map[string][]byte
	handler  func(command string) (string, error)
}

func newFakeComm(handler func(command string) (string, error)) *fakeComm {
	return &fakeComm{
		uploads: make(map[string][]byte),
		handler: handler,
	}
}

func (f *fakeComm) Execute(_ context.Context, command string) (string, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()

	if f.handler == nil {
		return "", nil
	}
	return f.handler(command)
}

func (f *fakeComm) Upload(_ context.Context, content []byte, remotePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[remotePath] = append([]byte(nil), content...)
	return nil
}

func (f *fakeComm) executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

// discardLogger satisfies Logger without output noise in tests.
var discardLogger = log.New(io.Discard, "", 0)
