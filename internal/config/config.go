// Package config loads the coderunner configuration file.
//
// The file has two sections: parameters (the job, as written by the user)
// and runtime (operator settings). Secret keys carry a leading '#', which
// is how the hosting platform marks values it stores encrypted.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Source selects where the script comes from.
type Source string

const (
	SourceCode Source = "code"
	SourceGit  Source = "git"
)

const (
	DefaultBranch        = "main"
	DefaultFilename      = "main.py"
	DefaultPythonVersion = "3.13"
	DefaultDataDir       = "data"
	DefaultNATSSubject   = "coderunner.logs"
	DefaultFlushBytes    = 50_000
	DefaultFlushInterval = 500 * time.Millisecond
)

// Config is the root of the configuration file.
type Config struct {
	Parameters Parameters `yaml:"parameters"`
	Runtime    Runtime    `yaml:"runtime"`
}

// Parameters are the user-facing job settings.
type Parameters struct {
	Source        Source      `yaml:"source"`
	Code          string      `yaml:"code"`
	Packages      []string    `yaml:"packages"`
	PythonVersion string      `yaml:"python_version"`
	Git           *Repository `yaml:"git"`

	// RawUserProperties accepts either a mapping or an empty list.
	RawUserProperties yaml.Node `yaml:"user_properties"`
	// UserProperties is the normalized form of RawUserProperties.
	UserProperties map[string]any `yaml:"-"`
}

// Runtime holds operator settings that are not part of the job.
type Runtime struct {
	DataDir         string        `yaml:"data_dir"`
	SSHKeyDir       string        `yaml:"ssh_key_dir"`
	HistoryDB       string        `yaml:"history_db"`
	MetricsTextfile string        `yaml:"metrics_textfile"`
	NATSURL         string        `yaml:"nats_url"`
	NATSSubject     string        `yaml:"nats_subject"`
	FlushBytes      int           `yaml:"flush_bytes"`
	FlushInterval   time.Duration `yaml:"flush_interval"`
}
