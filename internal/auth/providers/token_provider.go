package providers

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/coderunner/internal/config"
	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
)

// TokenUser is the user name paired with the token in the clone URL.
const TokenUser = "x-token-auth"

// TokenProvider embeds a personal access token in an HTTPS URL.
type TokenProvider struct{}

// NewTokenProvider creates a new token authentication provider.
func NewTokenProvider() *TokenProvider {
	return &TokenProvider{}
}

func (p *TokenProvider) Mode() config.AuthMode { return config.AuthToken }

func (p *TokenProvider) ValidateConfig(req Request) error {
	if !req.Repo.HasToken() {
		return ferrors.ConfigError("No personal access token provided").Build()
	}
	if req.Endpoint.Protocol != "https" {
		return ferrors.ConfigError("PAT authentication is only supported for HTTPS URLs").
			WithContext("scheme", req.Endpoint.Protocol).
			Build()
	}
	return nil
}

// Resolve returns https://x-token-auth:<token>@host/path.
func (p *TokenProvider) Resolve(req Request) (*Credentials, error) {
	token := strings.TrimSpace(req.Repo.Token)
	ep := *req.Endpoint
	ep.User = TokenUser
	ep.Password = token

	slog.Info("Git token authentication set up for HTTPS URL.")
	return &Credentials{URL: ep.String(), Secrets: []string{token}}, nil
}

func (p *TokenProvider) Name() string { return "TokenProvider" }
