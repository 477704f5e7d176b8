package connector

import (
	"fmt"
	"time"
)

// The connect sequence has four distinct external failure surfaces, each
// with its own type so internal/cli can map them to exit behavior with
// errors.As. None are retried; any failure aborts the whole attempt, which
// is what the SSH client expects from a ProxyCommand.

// AuthError reports that the SSO flow could not produce usable credentials.
type AuthError struct {
	Profile string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("sso authentication failed for profile %q: %v", e.Profile, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// StartError reports a provider-side rejection while starting the instance
// or checking its status. Code carries the API error code when one exists
// (e.g. "InvalidInstanceID.NotFound").
type StartError struct {
	Target string
	Code   string
	Err    error
}

func (e *StartError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("start instance %s: %s: %v", e.Target, e.Code, e.Err)
	}
	return fmt.Sprintf("start instance %s: %v", e.Target, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// TimeoutError reports that the instance did not reach running/ok before
// the readiness deadline.
type TimeoutError struct {
	Target string
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("instance %s not ready after %s", e.Target, e.Waited)
}

// SessionError reports a session process failure. ExitCode is the session
// process's exit code and is propagated unchanged to our own exit status.
type SessionError struct {
	Target   string
	ExitCode int
	Err      error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session to %s ended with exit code %d: %v", e.Target, e.ExitCode, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }
