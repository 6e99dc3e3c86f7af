package mocks

import (
	"time"
)

// CompletedToken is an mqtt.Token that has already finished with Err.
type CompletedToken struct {
	Err error
}

func (t *CompletedToken) Wait() bool                     { return true }
func (t *CompletedToken) WaitTimeout(time.Duration) bool { return true }
func (t *CompletedToken) Error() error                   { return t.Err }

// Done returns a closed channel.
func (t *CompletedToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
