package config

import (
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
)

// Normalize case-folds enumerations, applies defaults and converts
// user_properties into a map. It is safe to call more than once.
func Normalize(cfg *Config) error {
	p := &cfg.Parameters

	p.Source = Source(strings.ToLower(strings.TrimSpace(string(p.Source))))
	if p.Source == "" {
		p.Source = SourceCode
	}
	if strings.TrimSpace(p.PythonVersion) == "" {
		p.PythonVersion = DefaultPythonVersion
	}

	packages := p.Packages[:0]
	for _, pkg := range p.Packages {
		if pkg = strings.TrimSpace(pkg); pkg != "" {
			packages = append(packages, pkg)
		}
	}
	p.Packages = packages

	if p.RawUserProperties.Kind != 0 || p.UserProperties == nil {
		props, err := normalizeUserProperties(&p.RawUserProperties)
		if err != nil {
			return err
		}
		p.UserProperties = props
	}

	if p.Git != nil {
		p.Git.Normalize()
	}

	rt := &cfg.Runtime
	if rt.DataDir == "" {
		rt.DataDir = DefaultDataDir
	}
	if rt.NATSSubject == "" {
		rt.NATSSubject = DefaultNATSSubject
	}
	if rt.FlushBytes <= 0 {
		rt.FlushBytes = DefaultFlushBytes
	}
	if rt.FlushInterval <= 0 {
		rt.FlushInterval = DefaultFlushInterval
	}
	return nil
}

// normalizeUserProperties accepts a mapping, null, or an empty list (which some
// editors produce for an untouched object field).
func normalizeUserProperties(node *yaml.Node) (map[string]any, error) {
	props := map[string]any{}
	switch node.Kind {
	case 0:
		return props, nil
	case yaml.MappingNode:
		if err := node.Decode(&props); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid user_properties").
				WithSeverity(ferrors.SeverityFatal).
				Build()
		}
		return props, nil
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return props, nil
		}
		return nil, ferrors.ConfigError("invalid user_properties").
			WithDetail("user_properties must be an object; non-empty list not supported").
			Build()
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return props, nil
		}
	}
	return nil, ferrors.ConfigError("invalid user_properties").
		WithDetail("user_properties must be an object").
		Build()
}

// Validate checks enumerations. Source specific requirements (code present,
// repository URL present, credentials) are checked by the component that
// needs them so that sync actions work on partially filled configurations.
func Validate(cfg *Config) error {
	switch cfg.Parameters.Source {
	case SourceCode, SourceGit:
	default:
		return ferrors.ConfigError("unsupported source").
			WithDetail("source must be one of: code, git").
			WithContext("source", string(cfg.Parameters.Source)).
			Build()
	}
	if g := cfg.Parameters.Git; g != nil {
		switch g.Auth {
		case AuthNone, AuthToken, AuthSSH:
		default:
			return ferrors.ConfigError("unsupported authentication method").
				WithDetail("auth must be one of: none, token, pat, ssh").
				WithContext("auth", string(g.Auth)).
				Build()
		}
	}
	if cfg.Parameters.Source == SourceGit && cfg.Parameters.Git == nil {
		return ferrors.ConfigError("Git repository URL is required").Build()
	}
	return nil
}
