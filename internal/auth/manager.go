// Package auth resolves repository credentials into what a git child
// process needs: an effective URL, an environment override and a redactor.
package auth

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/coderunner/internal/auth/providers"
	"git.home.luguber.info/inful/coderunner/internal/config"
	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/logfields"
	"git.home.luguber.info/inful/coderunner/internal/redact"
)

const (
	// EnvTerminalPrompt disables interactive credential prompts in git.
	EnvTerminalPrompt = "GIT_TERMINAL_PROMPT"
	// EnvSSHCommand overrides the ssh invocation used by git.
	EnvSSHCommand = "GIT_SSH_COMMAND"
)

// Resolved holds the per-operation credentials. Call Close when the
// operation that needed them has returned.
type Resolved struct {
	Mode config.AuthMode
	// URL is the effective URL passed to git. Never log it; use DisplayURL.
	URL string
	// DisplayURL is the URL with any user info removed.
	DisplayURL string
	// Env is merged over the ambient environment of the git child.
	Env        map[string]string
	SSHCommand string
	KeyFile    string
	Redactor   *redact.Redactor
}

// Redact masks every secret involved in this resolution.
func (r *Resolved) Redact(s string) string {
	return r.Redactor.String(s)
}

// Close deletes the key file, if one was written. It is safe to call twice.
func (r *Resolved) Close() error {
	if r == nil || r.KeyFile == "" {
		return nil
	}
	if err := os.Remove(r.KeyFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to remove SSH key file").Build()
	}
	slog.Debug("Removed SSH key file", logfields.Path(r.KeyFile))
	r.KeyFile = ""
	return nil
}

// Manager resolves repository credentials using the registered providers.
type Manager struct {
	registry *providers.AuthProviderRegistry
	keyDir   string
}

// NewManager creates a manager with the standard providers. keyDir is where
// SSH keys are written; empty means ~/.ssh. A leading "~/" is expanded.
func NewManager(keyDir string) *Manager {
	return &Manager{
		registry: providers.NewAuthProviderRegistry(),
		keyDir:   expandHome(keyDir),
	}
}

// KeyDir returns the directory SSH keys are written to.
func (m *Manager) KeyDir() string { return m.keyDir }

// Resolve normalizes repo in place (SSH wins over a token) and produces the
// credentials for one git operation.
func (m *Manager) Resolve(repo *config.Repository) (*Resolved, error) {
	if repo == nil || strings.TrimSpace(repo.URL) == "" {
		return nil, ferrors.ConfigError("Git repository URL is required").Build()
	}
	repo.Normalize()

	ep, err := transport.NewEndpoint(repo.URL)
	if err != nil {
		// The parse error echoes the URL, which may carry credentials.
		return nil, ferrors.ConfigError("invalid Git repository URL").Build()
	}

	creds, provider, err := m.registry.Resolve(providers.Request{Repo: repo, Endpoint: ep, KeyDir: m.keyDir})
	if err != nil {
		return nil, err
	}

	env := map[string]string{EnvTerminalPrompt: "0"}
	if creds.SSHCommand != "" {
		env[EnvSSHCommand] = creds.SSHCommand
	}

	display := *ep
	display.User = ""
	display.Password = ""

	resolved := &Resolved{
		Mode:       repo.Auth,
		URL:        creds.URL,
		DisplayURL: display.String(),
		Env:        env,
		SSHCommand: creds.SSHCommand,
		KeyFile:    creds.KeyFile,
		Redactor:   redact.New(append(creds.Secrets, ep.Password)...),
	}
	slog.Debug("Resolved repository authentication",
		logfields.URL(resolved.DisplayURL),
		logfields.AuthMode(string(repo.Auth)),
		slog.String("provider", provider.Name()))
	return resolved, nil
}

func expandHome(dir string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	switch {
	case dir == "":
		return filepath.Join(home, ".ssh")
	case dir == "~":
		return home
	case strings.HasPrefix(dir, "~/"):
		return filepath.Join(home, dir[2:])
	}
	return dir
}
