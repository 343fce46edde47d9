package providers

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/coderunner/internal/config"
	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/logfields"
)

// KeyFileName is the fixed name of the private key file inside the key directory.
const KeyFileName = "coderunner_private_key"

var sshOptions = []string{
	"-o", "BatchMode=yes",
	"-o", "ConnectTimeout=30",
	"-o", "ServerAliveInterval=60",
}

// SSHCommand builds the GIT_SSH_COMMAND value. keyFile may be empty.
func SSHCommand(keyFile string) string {
	parts := append([]string{"ssh"}, sshOptions...)
	if keyFile != "" {
		parts = append(parts, "-i", shellQuote(keyFile))
	}
	return strings.Join(parts, " ")
}

// SSHProvider writes the configured private key to disk and points ssh at it.
type SSHProvider struct{}

// NewSSHProvider creates a new SSH authentication provider.
func NewSSHProvider() *SSHProvider {
	return &SSHProvider{}
}

func (p *SSHProvider) Mode() config.AuthMode { return config.AuthSSH }

func (p *SSHProvider) ValidateConfig(req Request) error {
	if !req.Repo.HasSSHKey() {
		return ferrors.ConfigError("SSH key is required for SSH authentication").Build()
	}
	return nil
}

func (p *SSHProvider) Resolve(req Request) (*Credentials, error) {
	if !isSSH(req) {
		slog.Warn("SSH authentication configured for a non-SSH URL", logfields.AuthMode(string(config.AuthSSH)))
	}
	key := req.Repo.PrivateKey()
	path, err := writeKeyFile(req.KeyDir, key)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write SSH key file").
			WithSeverity(ferrors.SeverityFatal).
			Build()
	}
	slog.Info("SSH key configured", logfields.Path(path))
	return &Credentials{
		URL:        req.Repo.URL,
		SSHCommand: SSHCommand(path),
		KeyFile:    path,
		Secrets:    []string{key},
	}, nil
}

func (p *SSHProvider) Name() string { return "SSHProvider" }

// writeKeyFile writes key line by line to dir/KeyFileName. The file mode is
// forced to 0600 before any content is written.
func writeKeyFile(dir, key string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create key directory: %w", err)
	}
	path := filepath.Join(dir, KeyFileName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("open key file: %w", err)
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("chmod key file: %w", err)
	}

	w := bufio.NewWriter(f)
	normalized := strings.ReplaceAll(strings.TrimSpace(key), "\r\n", "\n")
	for _, line := range strings.Split(normalized, "\n") {
		if _, err := w.WriteString(strings.TrimRight(line, " \t") + "\n"); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("write key file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close key file: %w", err)
	}
	return path, nil
}

func isSSH(req Request) bool {
	return req.Endpoint != nil && req.Endpoint.Protocol == "ssh"
}

func shellQuote(s string) string {
	if !strings.ContainsAny(s, " \t'\"\\$`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
