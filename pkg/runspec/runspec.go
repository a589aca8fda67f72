// Package runspec provides loading and validation of replay run
// specs.
//
// A run spec is a YAML file describing the pipeline a recorded event
// stream belongs to: name, working directory, plugin options, and the
// processes with their job counts. The replay command pairs one run
// spec with one event stream.
//
// Example (YAML):
//
//	name: align-pipeline
//	workdir: /data/align-pipeline
//	plugin_opts:
//	  engine_log_level: DEBUG
//	procs:
//	  - name: align
//	    size: 100
//	  - name: merge
//	    size: 1
package runspec

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RunSpec describes one recorded pipeline run.
type RunSpec struct {
	// Name is the pipeline name.
	Name string `yaml:"name"`

	// Workdir is the run's working directory: local path or
	// object-store URI.
	Workdir string `yaml:"workdir"`

	// PluginOpts carries plugin configuration, matching the
	// framework's free-form plugin-opts map.
	PluginOpts map[string]any `yaml:"plugin_opts,omitempty"`

	// Procs lists the processes of the run in order.
	Procs []ProcSpec `yaml:"procs"`
}

// ProcSpec describes one process of the run.
type ProcSpec struct {
	// Name is the process name, unique within the spec.
	Name string `yaml:"name"`

	// Size is the number of jobs the process fans out to.
	Size int `yaml:"size"`

	// PluginOpts overlays the run-level plugin options for this
	// process.
	PluginOpts map[string]any `yaml:"plugin_opts,omitempty"`
}

// Load reads and validates a run spec from the given file path.
func Load(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run spec not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read run spec: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a run spec from raw YAML.
func LoadFromBytes(data []byte) (*RunSpec, error) {
	if len(data) == 0 {
		return nil, errors.New("run spec is empty")
	}

	var spec RunSpec
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parse run spec: %w", err)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks required fields and per-proc consistency.
func (s *RunSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("run spec: name is required")
	}
	if strings.TrimSpace(s.Workdir) == "" {
		return errors.New("run spec: workdir is required")
	}
	if len(s.Procs) == 0 {
		return errors.New("run spec: at least one proc is required")
	}

	seen := make(map[string]struct{}, len(s.Procs))
	for i, p := range s.Procs {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("run spec: procs[%d]: name is required", i)
		}
		if p.Size < 0 {
			return fmt.Errorf("run spec: procs[%d] (%s): size must be >= 0", i, p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("run spec: duplicate proc name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Proc returns the spec for the named process, or nil.
func (s *RunSpec) Proc(name string) *ProcSpec {
	for i := range s.Procs {
		if s.Procs[i].Name == name {
			return &s.Procs[i]
		}
	}
	return nil
}
