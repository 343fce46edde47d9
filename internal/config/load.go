package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/logfields"
)

var envFiles = []string{".env", ".env.local"}

// Load reads configPath, expands ${VAR} references and returns a normalized,
// validated Config. Variables from .env and .env.local are loaded first;
// variables already set in the environment are never overwritten.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").Build()
	}
	return Parse(data)
}

// Parse decodes a configuration document. JSON is accepted as a YAML subset.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").
			WithSeverity(ferrors.SeverityFatal).
			WithRetry(ferrors.RetryUserAction).
			Build()
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load environment file", logfields.Path(path), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(path))
	}
}

// Describe is a short human summary used in startup logs.
func (c *Config) Describe() string {
	if c.Parameters.Source == SourceGit && c.Parameters.Git != nil {
		return fmt.Sprintf("git %s@%s:%s", c.Parameters.Git.DisplayURL(), c.Parameters.Git.Branch, c.Parameters.Git.Filename)
	}
	return fmt.Sprintf("inline code (%d bytes)", len(c.Parameters.Code))
}
