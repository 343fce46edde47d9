package config

import (
	"log/slog"
	"net/url"
	"strings"
)

// AuthMode selects how the repository is authenticated.
type AuthMode string

const (
	AuthNone  AuthMode = "none"
	AuthToken AuthMode = "token"
	AuthSSH   AuthMode = "ssh"
	// authPAT is accepted as an alias of AuthToken.
	authPAT AuthMode = "pat"
)

// Repository describes the git source and its credentials.
type Repository struct {
	URL      string   `yaml:"url"`
	Branch   string   `yaml:"branch"`
	Filename string   `yaml:"filename"`
	Auth     AuthMode `yaml:"auth"`
	Token    string   `yaml:"#token"`
	SSHKeys  SSHKeys  `yaml:"ssh_keys"`
}

// SSHKeys mirrors the nested key layout of the configuration file.
type SSHKeys struct {
	Keys struct {
		Private string `yaml:"#private"`
	} `yaml:"keys"`
}

// PrivateKey returns the configured SSH private key.
func (r *Repository) PrivateKey() string { return r.SSHKeys.Keys.Private }

// HasToken reports whether a non-blank token is configured.
func (r *Repository) HasToken() bool { return strings.TrimSpace(r.Token) != "" }

// HasSSHKey reports whether a non-blank private key is configured.
func (r *Repository) HasSSHKey() bool { return strings.TrimSpace(r.PrivateKey()) != "" }

// Normalize applies defaults and resolves conflicting credentials in place.
// When both a token and a private key are present the key wins: the token is
// cleared and the mode switched to ssh. Calling Normalize again is a no-op.
func (r *Repository) Normalize() {
	r.URL = strings.TrimSpace(r.URL)
	if strings.TrimSpace(r.Branch) == "" {
		r.Branch = DefaultBranch
	}
	if strings.TrimSpace(r.Filename) == "" {
		r.Filename = DefaultFilename
	}

	mode := AuthMode(strings.ToLower(strings.TrimSpace(string(r.Auth))))
	switch mode {
	case "":
		mode = AuthNone
	case authPAT:
		mode = AuthToken
	}
	r.Auth = mode

	if r.HasToken() && r.HasSSHKey() {
		r.Token = ""
		r.Auth = AuthSSH
	}
}

// DisplayURL returns URL without any embedded user info.
func (r *Repository) DisplayURL() string {
	u, err := url.Parse(r.URL)
	if err != nil || u.User == nil {
		return r.URL
	}
	u.User = nil
	return u.String()
}

// LogValue reveals only whether secrets are present.
func (r *Repository) LogValue() slog.Value {
	if r == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("url", r.DisplayURL()),
		slog.String("branch", r.Branch),
		slog.String("filename", r.Filename),
		slog.String("auth", string(r.Auth)),
		slog.Bool("has_token", r.HasToken()),
		slog.Bool("has_ssh_key", r.HasSSHKey()),
	)
}
