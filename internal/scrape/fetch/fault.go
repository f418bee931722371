package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type FaultKind string

const (
	FaultTimeout    FaultKind = "timeout"
	FaultConnection FaultKind = "connection"
	FaultStatus     FaultKind = "status"
	FaultBlocked    FaultKind = "blocked"
	FaultRead       FaultKind = "read"
	FaultRequest    FaultKind = "request"
	FaultCancelled  FaultKind = "cancelled"
)

// Fault is every way a GET can fail. Callers branch on Kind, never on the
// error text.
type Fault struct {
	Kind       FaultKind
	StatusCode int
	URL        string
	Err        error
}

func (f *Fault) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d): %v", f.Kind, f.URL, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %v", f.Kind, f.URL, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// AsFault returns the Fault in err's chain, if any.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func classify(err error) FaultKind {
	if errors.Is(err, context.Canceled) {
		return FaultCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FaultTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FaultTimeout
	}
	return FaultConnection
}

func (f *Fault) transient() bool {
	return f.Kind == FaultTimeout || f.Kind == FaultConnection
}
