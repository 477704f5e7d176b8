package security

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mfreitag/ssm-connect/internal/appconfig"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Finding struct {
	Severity       Severity `json:"severity"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type AuditReport struct {
	Findings []Finding `json:"findings"`
}

func (r AuditReport) HasHigh() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// RunLocalAudit inspects the local AWS credential and ssm-connect file
// posture. SSO token caches and long-lived credentials both live under
// ~/.aws, so over-broad permissions there defeat the point of the SSO flow.
func RunLocalAudit() (AuditReport, error) {
	var findings []Finding

	home, err := os.UserHomeDir()
	if err == nil {
		awsDir := filepath.Join(home, ".aws")
		checkPathPerm(&findings, awsDir, 0o700, false)
		checkPathPerm(&findings, filepath.Join(awsDir, "credentials"), 0o600, true)
		checkPathPerm(&findings, filepath.Join(awsDir, "config"), 0o600, true)
		checkPathPerm(&findings, filepath.Join(awsDir, "sso", "cache"), 0o700, false)
	}

	cfgDir, err := appconfig.ConfigDir()
	if err == nil {
		checkPathPerm(&findings, cfgDir, 0o700, false)
		checkPathPerm(&findings, filepath.Join(cfgDir, "config.yaml"), 0o600, true)
		checkPathPerm(&findings, filepath.Join(cfgDir, "history.json"), 0o600, true)
		checkPathPerm(&findings, filepath.Join(cfgDir, "events.jsonl"), 0o600, true)
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return severityRank(findings[i].Severity) > severityRank(findings[j].Severity)
		}
		if findings[i].Target != findings[j].Target {
			return findings[i].Target < findings[j].Target
		}
		return findings[i].Message < findings[j].Message
	})
	return AuditReport{Findings: findings}, nil
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

func checkPathPerm(findings *[]Finding, path string, max os.FileMode, isFile bool) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityLow,
			Target:         path,
			Message:        fmt.Sprintf("unable to inspect permissions: %v", err),
			Recommendation: "verify path and permissions manually",
		})
		return
	}
	mode := st.Mode().Perm()
	if mode > max {
		kind := "directory"
		if isFile {
			kind = "file"
		}
		sev := SeverityMedium
		if isFile && mode&0o044 != 0 {
			// World/group readable credential material.
			sev = SeverityHigh
		}
		*findings = append(*findings, Finding{
			Severity:       sev,
			Target:         path,
			Message:        fmt.Sprintf("%s permissions are too broad (%#o)", kind, mode),
			Recommendation: fmt.Sprintf("restrict permissions to %#o or tighter", max),
		})
	}
}
