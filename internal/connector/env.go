package connector

import (
	"os"

	"github.com/mfreitag/ssm-connect/internal/appconfig"
	"github.com/mfreitag/ssm-connect/internal/model"
	"github.com/mfreitag/ssm-connect/internal/util"
)

// ResolveEnvironment derives the per-invocation ConnectSpec from the target
// definition, the requested port, and optional flag overrides. It is a pure
// function of its arguments: no I/O, no clock, so the same inputs always
// produce the same spec. Precedence per field is flag > target override >
// config default > built-in default.
func ResolveEnvironment(cfg appconfig.Config, target model.Target, port int, profileFlag, regionFlag string) model.ConnectSpec {
	profile := util.DefaultString(profileFlag,
		util.DefaultString(target.Profile,
			util.DefaultString(cfg.Defaults.Profile, util.DefaultProfile)))
	region := util.DefaultString(regionFlag,
		util.DefaultString(target.Region,
			util.DefaultString(cfg.Defaults.Region, util.DefaultRegion)))
	if port <= 0 {
		port = target.Port
	}
	if port <= 0 {
		port = util.DefaultSSHPort
	}
	return model.ConnectSpec{
		Target:  target.InstanceID,
		Port:    port,
		Profile: profile,
		Region:  region,
	}
}

// ExportEnvironment sets AWS_PROFILE and AWS_DEFAULT_REGION in the process
// environment so the child processes (aws sso login, aws ssm start-session,
// session-manager-plugin) resolve the same account and region the SDK
// clients were built with. Called exactly once per run, before any child is
// spawned.
func ExportEnvironment(spec model.ConnectSpec) error {
	if err := os.Setenv("AWS_PROFILE", spec.Profile); err != nil {
		return err
	}
	return os.Setenv("AWS_DEFAULT_REGION", spec.Region)
}
