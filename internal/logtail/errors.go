package logtail

import "fmt"

// OpenError reports that a log file could not be opened for shared reading.
// The monitor treats it as transient and retries on its next poll.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open log %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ReadError reports a failed read from an already open log file. Bytes read
// before the failure stay buffered and are surfaced by the next successful call.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read log %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
