// Package routine handles the representation and YAML form of compiled
// replay routines.
package routine

// Routine is a compiled, replayable sequence of steps.
type Routine struct {
	SourcePath string // Path the routine was read from, empty when compiled in memory
	Header     Header
	Steps      []Step
}

// Header is the routine's first YAML document.
type Header struct {
	Name    string `yaml:"name,omitempty"`
	Source  string `yaml:"source,omitempty"`  // Action log the routine was compiled from
	Session string `yaml:"session,omitempty"` // Recording session id
	Target  Target `yaml:"target,omitempty"`
}

// Target is the device endpoint the routine was recorded against. Replay may
// override it.
type Target struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// IsZero reports whether no target is set; used by yaml omitempty.
func (t Target) IsZero() bool {
	return t.Host == "" && t.Port == 0
}

// DisplayName returns the header name, falling back to the source path.
func (r *Routine) DisplayName() string {
	if r.Header.Name != "" {
		return r.Header.Name
	}
	return r.SourcePath
}
