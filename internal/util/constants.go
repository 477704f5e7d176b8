// Package util provides common utility functions and constants used across
// the ssm-connect application. This package is intentionally kept
// dependency-free (no imports from other internal/* packages) to serve as a
// shared foundation without introducing circular dependencies.
package util

import "time"

const (
	// DefaultPollInterval is the fixed delay between instance status checks
	// while waiting for a started EC2 instance to become ready. EC2 status
	// checks only refresh on the order of tens of seconds, so polling faster
	// than 5s burns API calls without learning anything new.
	// Used by: internal/connector (WaitUntilReady) and
	//          internal/appconfig (Default, Load normalization).
	DefaultPollInterval = 5 * time.Second

	// DefaultWaitTimeout bounds the readiness poll. A cold start of a
	// typical instance reaches running/ok well inside three minutes; past
	// that the instance is almost certainly impaired and SSH should report
	// a connection failure rather than hang the user's terminal.
	// Used by: internal/connector (WaitUntilReady) and
	//          internal/appconfig (Default, Load normalization).
	DefaultWaitTimeout = 180 * time.Second

	// MaxWaitTimeout caps user-configured wait deadlines. An SSH client
	// invoking us as a ProxyCommand has its own ConnectTimeout expectations;
	// a poll longer than ten minutes only hides a dead instance.
	MaxWaitTimeout = 600 * time.Second

	// DefaultSSHPort is the port forwarded through the SSM session when a
	// named target does not configure one.
	DefaultSSHPort = 22

	// DefaultProfile and DefaultRegion are the built-in fallbacks applied
	// when neither flags nor config provide a value, matching the AWS CLI's
	// own defaults.
	DefaultProfile = "default"
	DefaultRegion  = "us-east-1"
)
