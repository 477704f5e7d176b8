package connector

import (
	"os"
	"testing"

	"github.com/mfreitag/ssm-connect/internal/appconfig"
	"github.com/mfreitag/ssm-connect/internal/model"
)

func TestResolveEnvironmentPrecedence(t *testing.T) {
	cfg := appconfig.Default()
	cfg.Defaults.Profile = "default"
	cfg.Defaults.Region = "us-east-1"
	target := model.Target{
		Name:       "dev-box",
		InstanceID: "i-0123456789abcdef0",
		Profile:    "eng",
		Region:     "us-west-2",
		Port:       2222,
	}

	// Flags beat target overrides.
	spec := ResolveEnvironment(cfg, target, 22, "ops", "eu-west-1")
	if spec.Profile != "ops" || spec.Region != "eu-west-1" || spec.Port != 22 {
		t.Fatalf("flags should win: %+v", spec)
	}

	// Target overrides beat config defaults.
	spec = ResolveEnvironment(cfg, target, 0, "", "")
	if spec.Profile != "eng" || spec.Region != "us-west-2" || spec.Port != 2222 {
		t.Fatalf("target overrides should win: %+v", spec)
	}

	// Config defaults fill the rest.
	spec = ResolveEnvironment(cfg, model.Target{InstanceID: "i-0fedcba9876543210"}, 0, "", "")
	if spec.Profile != "default" || spec.Region != "us-east-1" || spec.Port != 22 {
		t.Fatalf("defaults should fill: %+v", spec)
	}
}

func TestResolveEnvironmentDeterministic(t *testing.T) {
	cfg := appconfig.Default()
	target := model.Target{InstanceID: "i-0123456789abcdef0", Profile: "eng"}
	a := ResolveEnvironment(cfg, target, 22, "", "us-west-2")
	b := ResolveEnvironment(cfg, target, 22, "", "us-west-2")
	if a != b {
		t.Fatalf("same inputs produced different specs: %+v vs %+v", a, b)
	}
}

func TestExportEnvironment(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_DEFAULT_REGION", "")

	spec := model.ConnectSpec{Target: "i-0123456789abcdef0", Port: 22, Profile: "eng", Region: "us-west-2"}
	if err := ExportEnvironment(spec); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("AWS_PROFILE"); got != "eng" {
		t.Fatalf("AWS_PROFILE = %q", got)
	}
	if got := os.Getenv("AWS_DEFAULT_REGION"); got != "us-west-2" {
		t.Fatalf("AWS_DEFAULT_REGION = %q", got)
	}
}
