// Package connector drives the connect sequence: authenticate, start the
// instance, wait for readiness, hand stdio to the session process.
//
// Control flows strictly forward through five steps; each step is
// terminal-on-failure. The readiness poll is the only loop. Instance
// lifecycle and identity checks go through typed SDK clients
// (internal/awsapi); the SSO flow and the session channel stay delegated to
// the external AWS tooling (internal/session).
package connector

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/mfreitag/ssm-connect/internal/awsapi"
	"github.com/mfreitag/ssm-connect/internal/events"
	"github.com/mfreitag/ssm-connect/internal/model"
	"github.com/mfreitag/ssm-connect/internal/util"
)

// LoginRunner abstracts the external SSO login flow for testing.
type LoginRunner interface {
	RunLogin(ctx context.Context, profile string) error
}

// SessionRunner abstracts the external session process for testing.
type SessionRunner interface {
	RunSession(ctx context.Context, target string, port int) (int, error)
}

// Journal abstracts the connection event store. Nil disables journaling;
// append failures are logged, never fatal — losing a journal line must not
// kill a working connection.
type Journal interface {
	Append(evt events.Event) error
}

// Connector coordinates one connection attempt. Fields are set once before
// Connect and not mutated afterwards; a Connector is good for exactly one
// invocation, matching the one-spec-per-process lifecycle.
type Connector struct {
	Identity  awsapi.IdentityAPI
	Instances awsapi.InstanceAPI
	Login     LoginRunner
	Session   SessionRunner
	Journal   Journal

	// Interval and Timeout shape the readiness poll.
	Interval time.Duration
	Timeout  time.Duration

	// Sleep is swapped for a counter in tests. When nil the poll waits on
	// a timer racing ctx.Done, so cancellation interrupts a sleep mid-wait.
	Sleep func(time.Duration)

	Logger *slog.Logger
}

// New creates a Connector with default poll cadence and real sleeping.
func New(identity awsapi.IdentityAPI, instances awsapi.InstanceAPI, login LoginRunner, sess SessionRunner) *Connector {
	return &Connector{
		Identity:  identity,
		Instances: instances,
		Login:     login,
		Session:   sess,
		Interval:  util.DefaultPollInterval,
		Timeout:   util.DefaultWaitTimeout,
	}
}

// Connect runs the five-step sequence for the given spec and returns the
// exit code to propagate. Setup-phase failures return 1 with a typed error;
// a session that ran returns its own exit code.
func (c *Connector) Connect(ctx context.Context, spec model.ConnectSpec) (int, error) {
	c.record(events.Event{Phase: model.PhaseAuthCheck, Target: spec.Target, Profile: spec.Profile, Region: spec.Region})
	if err := c.EnsureAuthenticated(ctx, spec.Profile); err != nil {
		c.recordError(spec, err)
		return 1, err
	}

	c.record(events.Event{Phase: model.PhaseInstanceStart, Target: spec.Target})
	if err := c.StartInstance(ctx, spec.Target); err != nil {
		c.recordError(spec, err)
		return 1, err
	}

	if err := c.WaitUntilReady(ctx, spec.Target); err != nil {
		c.recordError(spec, err)
		return 1, err
	}
	c.record(events.Event{Phase: model.PhaseInstanceReady, Target: spec.Target})

	c.record(events.Event{Phase: model.PhaseSessionOpen, Target: spec.Target})
	code, err := c.OpenSession(ctx, spec)
	c.record(events.Event{Phase: model.PhaseSessionClose, Target: spec.Target, ExitCode: code})
	return code, err
}

// EnsureAuthenticated verifies the SSO session by asking STS who we are. A
// failed check triggers the external login flow once, then re-checks; a
// second failure is terminal.
func (c *Connector) EnsureAuthenticated(ctx context.Context, profile string) error {
	out, err := c.Identity.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err == nil {
		c.logger().Debug("sso session valid", "profile", profile, "arn", aws.ToString(out.Arn))
		return nil
	}

	c.logger().Info("sso session missing or expired, starting login", "profile", profile)
	c.record(events.Event{Phase: model.PhaseSSOLogin, Profile: profile})
	if err := c.Login.RunLogin(ctx, profile); err != nil {
		return &AuthError{Profile: profile, Err: err}
	}

	out, err = c.Identity.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return &AuthError{Profile: profile, Err: err}
	}
	c.logger().Info("sso login succeeded", "profile", profile, "arn", aws.ToString(out.Arn))
	return nil
}

// StartInstance requests an instance start. Starting an already-running
// instance is a provider-side no-op, which keeps this idempotent.
func (c *Connector) StartInstance(ctx context.Context, target string) error {
	out, err := c.Instances.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{target},
	})
	if err != nil {
		return &StartError{Target: target, Code: awsapi.ErrorCode(err), Err: err}
	}
	for _, ch := range out.StartingInstances {
		if aws.ToString(ch.InstanceId) != target || ch.CurrentState == nil {
			continue
		}
		if ch.CurrentState.Name == ec2types.InstanceStateNameRunning {
			c.logger().Debug("instance already running", "target", target)
		} else {
			c.logger().Info("starting instance", "target", target, "state", string(ch.CurrentState.Name))
		}
	}
	return nil
}

// WaitUntilReady polls instance status at a fixed interval until the
// instance is running with both status checks ok, or the deadline elapses.
// The first check happens before any sleep, so an already-ready instance
// returns without waiting. Status API errors are terminal: a credentials or
// permission problem would otherwise spin until the deadline.
func (c *Connector) WaitUntilReady(ctx context.Context, target string) error {
	interval := c.Interval
	if interval <= 0 {
		interval = util.DefaultPollInterval
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = util.DefaultWaitTimeout
	}

	var waited time.Duration
	for {
		ready, state, err := c.instanceReady(ctx, target)
		if err != nil {
			return &StartError{Target: target, Code: awsapi.ErrorCode(err), Err: err}
		}
		if ready {
			c.logger().Info("instance ready", "target", target, "waited", waited.String())
			return nil
		}
		if waited+interval > timeout {
			return &TimeoutError{Target: target, Waited: waited}
		}
		c.logger().Debug("instance not ready", "target", target, "state", state, "waited", waited.String())
		if err := c.sleepInterval(ctx, interval); err != nil {
			return err
		}
		waited += interval
	}
}

// sleepInterval blocks for one poll interval or until ctx is cancelled,
// whichever comes first. The injected Sleep (test counter) cannot be
// interrupted, so cancellation is checked after it returns.
func (c *Connector) sleepInterval(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		c.Sleep(d)
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// OpenSession hands stdio to the external session process and blocks until
// it ends. The session's exit code is returned either way.
func (c *Connector) OpenSession(ctx context.Context, spec model.ConnectSpec) (int, error) {
	code, err := c.Session.RunSession(ctx, spec.Target, spec.Port)
	if err != nil {
		return code, &SessionError{Target: spec.Target, ExitCode: code, Err: err}
	}
	return 0, nil
}

// instanceReady reports whether the instance is running with both the
// instance and system status summaries ok — the same bar as the original
// chained running/status-ok waiters. IncludeAllInstances makes stopped
// instances report a state instead of an empty result.
func (c *Connector) instanceReady(ctx context.Context, target string) (bool, string, error) {
	out, err := c.Instances.DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
		InstanceIds:         []string{target},
		IncludeAllInstances: aws.Bool(true),
	})
	if err != nil {
		return false, "", err
	}
	for _, st := range out.InstanceStatuses {
		if aws.ToString(st.InstanceId) != target {
			continue
		}
		state := ""
		if st.InstanceState != nil {
			state = string(st.InstanceState.Name)
		}
		if st.InstanceState == nil || st.InstanceState.Name != ec2types.InstanceStateNameRunning {
			return false, state, nil
		}
		if summaryOK(st.InstanceStatus) && summaryOK(st.SystemStatus) {
			return true, state, nil
		}
		return false, state + " (status checks pending)", nil
	}
	return false, "unknown", nil
}

func summaryOK(s *ec2types.InstanceStatusSummary) bool {
	return s != nil && s.Status == ec2types.SummaryStatusOk
}

func (c *Connector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Connector) record(evt events.Event) {
	if c.Journal == nil {
		return
	}
	if err := c.Journal.Append(evt); err != nil {
		c.logger().Warn("failed to record connection event", "error", err)
	}
}

func (c *Connector) recordError(spec model.ConnectSpec, err error) {
	c.record(events.Event{Phase: model.PhaseError, Target: spec.Target, Message: err.Error()})
}
