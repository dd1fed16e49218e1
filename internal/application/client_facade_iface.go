package application

import "lexa-chat/internal/infra/worker"

// Submitter runs a named task off the caller's goroutine. *worker.Pool
// satisfies it; tests pass a synchronous one.
type Submitter interface {
	Submit(name string, task worker.Task) error
}
