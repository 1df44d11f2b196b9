package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

var (
	ErrConnection = errors.New("daemon connection failed")
	ErrTimeout    = errors.New("daemon reply timed out")
	ErrProtocol   = errors.New("daemon protocol error")
)

// ConnectionReason classifies why the socket could not be used.
type ConnectionReason string

const (
	ReasonMissing    ConnectionReason = "missing"
	ReasonRefused    ConnectionReason = "refused"
	ReasonNotSocket  ConnectionReason = "not-a-socket"
	ReasonPermission ConnectionReason = "permission"
	ReasonTimeout    ConnectionReason = "timeout"
	ReasonCanceled   ConnectionReason = "canceled"
	ReasonWrite      ConnectionReason = "write"
	ReasonUnknown    ConnectionReason = "unknown"
)

// ConnectionError reports a failure to reach the daemon or to hand it the frame.
type ConnectionError struct {
	Socket string
	Reason ConnectionReason
	Err    error
}

func (e *ConnectionError) Error() string {
	switch e.Reason {
	case ReasonMissing:
		return fmt.Sprintf("connect to launcher daemon: socket %s not found", e.Socket)
	case ReasonRefused:
		return fmt.Sprintf("connect to launcher daemon: socket %s refused the connection", e.Socket)
	case ReasonNotSocket:
		return fmt.Sprintf("connect to launcher daemon: %s is not a socket", e.Socket)
	case ReasonPermission:
		return fmt.Sprintf("connect to launcher daemon: permission denied on %s", e.Socket)
	case ReasonTimeout:
		return fmt.Sprintf("connect to launcher daemon: %s did not accept in time", e.Socket)
	case ReasonWrite:
		return fmt.Sprintf("send launch request to %s: %v", e.Socket, e.Err)
	default:
		return fmt.Sprintf("connect to launcher daemon at %s: %v", e.Socket, e.Err)
	}
}

func (e *ConnectionError) Unwrap() []error { return causes(ErrConnection, e.Err) }

// Hint suggests the operator's next step for the failure.
func (e *ConnectionError) Hint() string {
	switch e.Reason {
	case ReasonMissing, ReasonRefused, ReasonNotSocket:
		return "verify the launcher daemon is running"
	case ReasonPermission:
		return "the socket is restricted to the launcher group; check your group membership"
	case ReasonTimeout:
		return "the daemon may be overloaded; try again once it is idle"
	default:
		return ""
	}
}

// TimeoutError reports that the daemon accepted the request but sent nothing
// before the response deadline.
type TimeoutError struct {
	Socket  string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("launcher daemon at %s sent no reply within %s", e.Socket, e.Timeout)
}

func (e *TimeoutError) Unwrap() []error { return causes(ErrTimeout, e.Err) }

// ProtocolError reports a reply the client cannot pass through as text.
type ProtocolError struct {
	Socket string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("launcher daemon at %s: %s: %v", e.Socket, e.Reason, e.Err)
	}
	return fmt.Sprintf("launcher daemon at %s: %s", e.Socket, e.Reason)
}

func (e *ProtocolError) Unwrap() []error { return causes(ErrProtocol, e.Err) }

func causes(marker, err error) []error {
	if err == nil {
		return []error{marker}
	}
	return []error{marker, err}
}

// classifyDialError maps a dial failure onto a ConnectionError. parent is the
// caller's context; a deadline that fired on the connect-phase timeout is a
// ReasonTimeout while a canceled parent is ReasonCanceled.
func classifyDialError(parent context.Context, socket string, err error) *ConnectionError {
	reason := ReasonUnknown
	var netErr net.Error
	switch {
	case parent.Err() != nil:
		reason = ReasonCanceled
		err = parent.Err()
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		reason = ReasonTimeout
	case errors.Is(err, unix.ENOENT):
		reason = ReasonMissing
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		reason = ReasonPermission
	case errors.Is(err, unix.ENOTSOCK):
		reason = ReasonNotSocket
	case errors.Is(err, unix.ECONNREFUSED):
		reason = ReasonRefused
		if !isSocket(socket) {
			reason = ReasonNotSocket
		}
	}
	return &ConnectionError{Socket: socket, Reason: reason, Err: err}
}

// isSocket reports whether path exists and is a Unix socket. Missing or
// unreadable paths count as sockets so the errno classification stands.
func isSocket(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return true
	}
	return st.Mode&unix.S_IFMT == unix.S_IFSOCK
}
