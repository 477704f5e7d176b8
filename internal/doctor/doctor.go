package doctor

import (
	"fmt"
	"sort"

	"github.com/mfreitag/ssm-connect/internal/appconfig"
	"github.com/mfreitag/ssm-connect/internal/security"
	"github.com/mfreitag/ssm-connect/internal/session"
	"github.com/mfreitag/ssm-connect/internal/util"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Issue struct {
	Severity       Severity `json:"severity"`
	Check          string   `json:"check"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// Run executes local diagnostics for ssm-connect operations.
func Run() (Report, error) {
	var issues []Issue

	if err := session.EnsureAWSCLI(); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "aws-cli",
			Target:         "PATH",
			Message:        err.Error(),
			Recommendation: "install the AWS CLI v2 and ensure `aws` is on PATH",
		})
	}
	if err := session.EnsureSessionPlugin(); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "session-manager-plugin",
			Target:         "PATH",
			Message:        err.Error(),
			Recommendation: "install session-manager-plugin; the AWS CLI execs it for every session",
		})
	}

	cfg, err := appconfig.Load()
	if err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "config-parse",
			Target:         "config.yaml",
			Message:        err.Error(),
			Recommendation: "fix the malformed YAML in the ssm-connect config",
		})
	} else {
		issues = append(issues, targetIssues(cfg)...)
	}

	if audit, err := security.RunLocalAudit(); err == nil {
		for _, f := range audit.Findings {
			sev := SeverityLow
			if f.Severity == security.SeverityMedium {
				sev = SeverityMedium
			}
			if f.Severity == security.SeverityHigh {
				sev = SeverityHigh
			}
			issues = append(issues, Issue{
				Severity:       sev,
				Check:          "security-audit",
				Target:         f.Target,
				Message:        f.Message,
				Recommendation: f.Recommendation,
			})
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		ri := severityRank(issues[i].Severity)
		rj := severityRank(issues[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if issues[i].Check != issues[j].Check {
			return issues[i].Check < issues[j].Check
		}
		if issues[i].Target != issues[j].Target {
			return issues[i].Target < issues[j].Target
		}
		return issues[i].Message < issues[j].Message
	})
	return Report{Issues: issues}, nil
}

func targetIssues(cfg appconfig.Config) []Issue {
	var issues []Issue
	byInstance := map[string][]string{}
	for _, t := range appconfig.SortedTargets(cfg) {
		if t.InstanceID == "" {
			issues = append(issues, Issue{
				Severity:       SeverityMedium,
				Check:          "target-instance-id",
				Target:         t.Name,
				Message:        "target has no instance_id",
				Recommendation: "set instance_id in config.yaml or remove the target",
			})
			continue
		}
		if !util.IsInstanceID(t.InstanceID) {
			issues = append(issues, Issue{
				Severity:       SeverityMedium,
				Check:          "target-instance-id",
				Target:         t.Name,
				Message:        fmt.Sprintf("instance_id %q does not look like an EC2 instance ID", t.InstanceID),
				Recommendation: "use the i-xxxxxxxxxxxxxxxxx form from the EC2 console",
			})
		}
		if t.Port != 0 {
			if err := util.ValidatePort(t.Port); err != nil {
				issues = append(issues, Issue{
					Severity:       SeverityMedium,
					Check:          "target-port",
					Target:         t.Name,
					Message:        err.Error(),
					Recommendation: "set a port between 1 and 65535, or omit it for 22",
				})
			}
		}
		byInstance[t.InstanceID] = append(byInstance[t.InstanceID], t.Name)
	}
	for id, names := range byInstance {
		if len(names) < 2 {
			continue
		}
		issues = append(issues, Issue{
			Severity:       SeverityLow,
			Check:          "duplicate-instance",
			Target:         id,
			Message:        fmt.Sprintf("instance is configured under %d target names", len(names)),
			Recommendation: "raw instance ID lookups resolve to the lexicographically first name; consolidate if that surprises you",
		})
	}
	return issues
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}
