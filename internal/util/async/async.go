// Package async provides utilities for parallel task execution.
//
// This package contains helpers for running multiple operations concurrently
// and collecting their errors. It is used for fanning node bootstraps out
// across independent hosts.
package async

import (
	"context"
	"fmt"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes multiple tasks in parallel and returns the first error
// encountered. All tasks are started concurrently, and the function waits for
// all to complete.
func RunParallel(ctx context.Context, tasks []Task) error {
	results := RunParallelAll(ctx, tasks)
	for _, task := range tasks {
		if err := results[task.Name]; err != nil {
			return fmt.Errorf("%s failed: %w", task.Name, err)
		}
	}
	return nil
}

// RunParallelAll executes multiple tasks in parallel and returns the outcome
// of every task keyed by name. All tasks run to completion regardless of
// individual failures, so callers can report per-task results.
func RunParallelAll(ctx context.Context, tasks []Task) map[string]error {
	results := make(map[string]error, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	type outcome struct {
		name string
		err  error
	}

	ch := make(chan outcome, len(tasks))

	for _, task := range tasks {
		go func() {
			ch <- outcome{name: task.Name, err: task.Func(ctx)}
		}()
	}

	for range len(tasks) {
		res := <-ch
		results[res.name] = res.err
	}

	return results
}
