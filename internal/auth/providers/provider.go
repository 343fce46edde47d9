package providers

import (
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/coderunner/internal/config"
	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
)

// Request is the input of one credential resolution.
type Request struct {
	Repo     *config.Repository
	Endpoint *transport.Endpoint
	// KeyDir is where the SSH key file is written.
	KeyDir string
}

// Credentials is what a provider produces for the git child process.
type Credentials struct {
	// URL is the effective clone URL. It may embed a token and must never be logged.
	URL string
	// SSHCommand is the value for GIT_SSH_COMMAND, empty when SSH does not apply.
	SSHCommand string
	// KeyFile is the private key written for this resolution, if any.
	KeyFile string
	// Secrets lists every secret value the provider handled, for redaction.
	Secrets []string
}

// AuthProvider handles one authentication mode.
type AuthProvider interface {
	// Mode returns the authentication mode this provider handles.
	Mode() config.AuthMode

	// ValidateConfig checks the repository settings without side effects.
	ValidateConfig(req Request) error

	// Resolve produces credentials. It may write the key file.
	Resolve(req Request) (*Credentials, error)

	// Name returns a human-readable name for this provider.
	Name() string
}

// AuthProviderRegistry maps modes to providers.
type AuthProviderRegistry struct {
	providers map[config.AuthMode]AuthProvider
}

// NewAuthProviderRegistry creates a registry with the none, token and ssh providers.
func NewAuthProviderRegistry() *AuthProviderRegistry {
	registry := &AuthProviderRegistry{
		providers: make(map[config.AuthMode]AuthProvider),
	}
	registry.Register(NewNoneProvider())
	registry.Register(NewTokenProvider())
	registry.Register(NewSSHProvider())
	return registry
}

// Register adds or replaces a provider.
func (r *AuthProviderRegistry) Register(provider AuthProvider) {
	r.providers[provider.Mode()] = provider
}

// GetProvider returns the provider for mode.
func (r *AuthProviderRegistry) GetProvider(mode config.AuthMode) (AuthProvider, bool) {
	provider, exists := r.providers[mode]
	return provider, exists
}

// Resolve validates and resolves req with the provider registered for its mode.
func (r *AuthProviderRegistry) Resolve(req Request) (*Credentials, AuthProvider, error) {
	provider, exists := r.GetProvider(req.Repo.Auth)
	if !exists {
		return nil, nil, ferrors.ConfigError("unsupported authentication method").
			WithContext("auth", string(req.Repo.Auth)).
			Build()
	}
	if err := provider.ValidateConfig(req); err != nil {
		return nil, provider, err
	}
	creds, err := provider.Resolve(req)
	if err != nil {
		return nil, provider, err
	}
	return creds, provider, nil
}
