package registry

// Service is a long-running part of the monitor (event stream, terminal view, HTTP API).
// Start launches its work in the background and returns; Stop blocks until that work
// has finished. Both fail when called in the wrong state.
type Service interface {
	Start() error
	Stop() error
}
