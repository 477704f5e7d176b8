package model

// Target is a named instance definition from config.yaml. The name is the
// map key in the config file and is what users type in place of a raw
// instance ID.
type Target struct {
	Name       string `yaml:"-" json:"name"`
	InstanceID string `yaml:"instance_id" json:"instance_id"`
	Profile    string `yaml:"profile,omitempty" json:"profile,omitempty"`
	Region     string `yaml:"region,omitempty" json:"region,omitempty"`
	Port       int    `yaml:"port,omitempty" json:"port,omitempty"`
	User       string `yaml:"user,omitempty" json:"user,omitempty"`
}

// DisplayName returns the configured name, falling back to the instance ID
// for ad hoc targets that were never added to config.yaml.
func (t Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.InstanceID
}

// ConnectSpec is the fully resolved per-invocation record: one of these is
// derived from flags and config at process start and discarded at exit.
// Target is always a raw instance ID by the time a spec exists.
type ConnectSpec struct {
	Target  string `json:"target"`
	Port    int    `json:"port"`
	Profile string `json:"profile"`
	Region  string `json:"region"`
}

// ConnectPhase labels one step of the connect sequence for journaling and
// progress output.
type ConnectPhase string

const (
	PhaseAuthCheck     ConnectPhase = "auth-check"
	PhaseSSOLogin      ConnectPhase = "sso-login"
	PhaseInstanceStart ConnectPhase = "instance-start"
	PhaseInstanceReady ConnectPhase = "instance-ready"
	PhaseSessionOpen   ConnectPhase = "session-open"
	PhaseSessionClose  ConnectPhase = "session-close"
	PhaseError         ConnectPhase = "error"
)
