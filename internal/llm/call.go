// Package llm - call.go wraps provider calls in a timeout race.
package llm

import (
	"context"
	"time"
)

// CallStatus is the tagged outcome of a bounded provider call.
type CallStatus int

const (
	// CallOK means the provider answered within the bound.
	CallOK CallStatus = iota
	// CallTimedOut means the bound elapsed first; any late result is discarded.
	CallTimedOut
	// CallFailed means the provider returned an error.
	CallFailed
)

// Call runs fn with the given timeout and returns a tagged outcome. A result
// arriving after the timeout is discarded, never applied: the goroutine's
// send is buffered so it cannot leak, and the caller has already moved on.
func Call(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (string, error)) (string, CallStatus, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		text, err := fn(callCtx)
		ch <- result{text: text, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			if callCtx.Err() == context.DeadlineExceeded {
				return "", CallTimedOut, res.err
			}
			return "", CallFailed, res.err
		}
		return res.text, CallOK, nil
	case <-callCtx.Done():
		if callCtx.Err() == context.DeadlineExceeded {
			return "", CallTimedOut, callCtx.Err()
		}
		return "", CallFailed, callCtx.Err()
	}
}
