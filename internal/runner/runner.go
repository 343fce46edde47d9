// Package runner is the coderunner workflow: obtain the script, prepare a
// virtual environment, install dependencies and run the script.
package runner

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/coderunner/internal/config"
	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/git"
	"git.home.luguber.info/inful/coderunner/internal/logfields"
	"git.home.luguber.info/inful/coderunner/internal/metrics"
	"git.home.luguber.info/inful/coderunner/internal/process"
	"git.home.luguber.info/inful/coderunner/internal/pyenv"
	"git.home.luguber.info/inful/coderunner/internal/redact"
	"git.home.luguber.info/inful/coderunner/internal/workspace"
)

// UserConfigFile is written next to the script for the script to read.
const UserConfigFile = "config.json"

// EnvDataDir tells the script where its data directory is.
const EnvDataDir = "CODERUNNER_DATA_DIR"

// Runner executes one configured job.
type Runner struct {
	cfg      *config.Config
	exec     process.Runner
	auth     git.CredentialResolver
	recorder metrics.Recorder
	tempBase string
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder sets the metrics recorder for git operations.
func WithRecorder(r metrics.Recorder) Option {
	return func(rn *Runner) {
		if r != nil {
			rn.recorder = r
		}
	}
}

// WithTempBase sets the parent of ephemeral workspaces (os.TempDir by default).
func WithTempBase(dir string) Option {
	return func(rn *Runner) { rn.tempBase = dir }
}

// New creates a Runner for cfg.
func New(cfg *config.Config, exec process.Runner, resolver git.CredentialResolver, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, exec: exec, auth: resolver, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs the full workflow in the data directory.
func (r *Runner) Run(ctx context.Context) error {
	params := r.cfg.Parameters
	ws := workspace.NewPersistentManager(r.cfg.Runtime.DataDir)
	if err := ws.Create(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to prepare data directory").Build()
	}
	dataDir := ws.Path()

	var script, base string
	switch params.Source {
	case config.SourceGit:
		repo, err := r.repository()
		if err != nil {
			return err
		}
		script, err = r.gitClient(dataDir).FetchRepository(ctx, repo)
		if err != nil {
			return err
		}
		base = filepath.Join(dataDir, git.CloneDir)
	default:
		if strings.TrimSpace(params.Code) == "" {
			return ferrors.ConfigError("Script code is required").Build()
		}
		var err error
		script, err = pyenv.WriteScript(dataDir, params.Code)
		if err != nil {
			return err
		}
		base = dataDir
	}

	if err := WriteUserConfig(dataDir, params); err != nil {
		return err
	}

	venv, err := pyenv.NewVenvManager(r.exec).Prepare(ctx, params.PythonVersion, base)
	if err != nil {
		return err
	}
	installer := pyenv.NewInstaller(r.exec)
	if params.Source == config.SourceGit {
		if err := installer.InstallForRepository(ctx, venv, base); err != nil {
			return err
		}
	}
	if err := installer.InstallPackages(ctx, venv, params.Packages); err != nil {
		return err
	}

	absData, err := filepath.Abs(dataDir)
	if err != nil {
		absData = dataDir
	}
	slog.Info("Executing script", logfields.File(script))
	_, err = r.exec.Run(ctx, process.Command{
		Args:   []string{pyenv.Python(venv), script},
		Dir:    base,
		Env:    map[string]string{"VIRTUAL_ENV": venv, EnvDataDir: absData},
		Redact: r.secrets().String,
	}, "Script finished.", "Script failed.")
	return err
}

// Branches lists the remote branches of the configured repository.
func (r *Runner) Branches(ctx context.Context) ([]git.Option, error) {
	repo, err := r.repository()
	if err != nil {
		return nil, err
	}
	return r.gitClient(r.tempBase).ListBranches(ctx, repo)
}

// Files lists the Python files of the configured repository using a
// throwaway clone.
func (r *Runner) Files(ctx context.Context) ([]git.Option, error) {
	repo, err := r.repository()
	if err != nil {
		return nil, err
	}
	ws := workspace.NewEphemeralManager(r.tempBase)
	if err := ws.Create(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create workspace").Build()
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to remove workspace", logfields.Path(ws.Path()), logfields.Error(err))
		}
	}()

	files, err := r.gitClient(ws.Path()).ListFiles(ctx, repo)
	if err != nil {
		return nil, err
	}
	return git.Options(files), nil
}

func (r *Runner) repository() (*config.Repository, error) {
	repo := r.cfg.Parameters.Git
	if repo == nil || strings.TrimSpace(repo.URL) == "" {
		return nil, ferrors.ConfigError("Git repository URL is required").Build()
	}
	return repo, nil
}

func (r *Runner) gitClient(workDir string) *git.Client {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return git.NewClient(workDir, r.exec, r.auth).WithRecorder(r.recorder)
}

func (r *Runner) secrets() *redact.Redactor {
	repo := r.cfg.Parameters.Git
	if repo == nil {
		return nil
	}
	return redact.New(repo.Token, repo.PrivateKey())
}

// WriteUserConfig writes the parameters the script may read to
// dir/config.json. User properties are merged over the job parameters; the
// inline code and the repository settings (which hold secrets) are left out.
func WriteUserConfig(dir string, params config.Parameters) error {
	packages := params.Packages
	if packages == nil {
		packages = []string{}
	}
	merged := map[string]any{
		"source":         string(params.Source),
		"packages":       packages,
		"python_version": params.PythonVersion,
	}
	maps.Copy(merged, params.UserProperties)

	data, err := json.MarshalIndent(map[string]any{"parameters": merged}, "", "  ")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode script configuration").Build()
	}
	if err := os.WriteFile(filepath.Join(dir, UserConfigFile), data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write script configuration").Build()
	}
	return nil
}
