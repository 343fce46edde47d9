package providers

import (
	"log/slog"

	"git.home.luguber.info/inful/coderunner/internal/config"
)

// NoneProvider uses the URL as given. SSH URLs still get the hardened
// SSH command so that a missing agent fails fast instead of prompting.
type NoneProvider struct{}

// NewNoneProvider creates a new none authentication provider.
func NewNoneProvider() *NoneProvider {
	return &NoneProvider{}
}

func (p *NoneProvider) Mode() config.AuthMode { return config.AuthNone }

func (p *NoneProvider) ValidateConfig(Request) error { return nil }

func (p *NoneProvider) Resolve(req Request) (*Credentials, error) {
	creds := &Credentials{URL: req.Repo.URL}
	if isSSH(req) {
		slog.Warn("SSH URL detected but no SSH private key provided. Trying default SSH configuration.")
		creds.SSHCommand = SSHCommand("")
	}
	return creds, nil
}

func (p *NoneProvider) Name() string { return "NoneProvider" }
