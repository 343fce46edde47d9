package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/coderunner/internal/auth"
	"git.home.luguber.info/inful/coderunner/internal/config"
	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/logfields"
	"git.home.luguber.info/inful/coderunner/internal/metrics"
	"git.home.luguber.info/inful/coderunner/internal/process"
)

// CloneDir is the directory, relative to the work dir, that holds the clone.
const CloneDir = "repo_clone"

const sshHint = ". Please check SSH key configuration or use HTTPS URL."

// CredentialResolver turns repository settings into per-operation credentials.
type CredentialResolver interface {
	Resolve(repo *config.Repository) (*auth.Resolved, error)
}

// Client performs repository operations inside a work directory.
type Client struct {
	workDir  string
	runner   process.Runner
	auth     CredentialResolver
	recorder metrics.Recorder
}

// NewClient creates a client that clones into workDir/CloneDir.
func NewClient(workDir string, runner process.Runner, resolver CredentialResolver) *Client {
	return &Client{workDir: workDir, runner: runner, auth: resolver, recorder: metrics.NoopRecorder{}}
}

// WithRecorder attaches a metrics recorder (fluent helper).
func (c *Client) WithRecorder(r metrics.Recorder) *Client {
	if r != nil {
		c.recorder = r
	}
	return c
}

// CloneOptions tunes Clone.
type CloneOptions struct {
	// SkipTargetCheck disables the check for the configured script file.
	SkipTargetCheck bool
}

// Clone clones repo at its configured branch and returns the clone directory.
// A failing git command yields a NetworkError; a missing script file yields a
// NotFoundError unless opts.SkipTargetCheck is set.
func (c *Client) Clone(ctx context.Context, repo *config.Repository, opts CloneOptions) (string, error) {
	res, err := c.auth.Resolve(repo)
	if err != nil {
		return "", err
	}
	defer c.release(res)

	dir := filepath.Join(c.workDir, CloneDir)
	if err := os.RemoveAll(dir); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to remove existing clone directory").Build()
	}
	if err := os.MkdirAll(c.workDir, 0o750); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create work directory").Build()
	}

	slog.Info("Cloning git repository", logfields.URL(res.DisplayURL), logfields.Branch(repo.Branch), logfields.AuthMode(string(res.Mode)))
	start := time.Now()
	_, err = c.runner.Run(ctx, process.Command{
		Args:   []string{"git", "clone", "--branch", repo.Branch, res.URL, dir},
		Env:    res.Env,
		Redact: res.Redact,
	}, "Successfully cloned repository", "Failed to clone git repository")
	c.recorder.ObserveGitOperation("clone", time.Since(start), err == nil)
	if err != nil {
		return "", remoteError("Failed to clone git repository", err)
	}

	if opts.SkipTargetCheck {
		return dir, nil
	}
	if _, err := c.targetPath(dir, repo.Filename); err != nil {
		return "", err
	}
	return dir, nil
}

// FetchRepository clones repo and returns the absolute path of its script file.
func (c *Client) FetchRepository(ctx context.Context, repo *config.Repository) (string, error) {
	dir, err := c.Clone(ctx, repo, CloneOptions{})
	if err != nil {
		return "", err
	}
	path, err := c.targetPath(dir, repo.Filename)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve script path").Build()
	}
	return abs, nil
}

// ListBranches lists the remote branches in the order git reports them.
func (c *Client) ListBranches(ctx context.Context, repo *config.Repository) ([]Option, error) {
	res, err := c.auth.Resolve(repo)
	if err != nil {
		return nil, err
	}
	defer c.release(res)

	start := time.Now()
	outcome, err := c.runner.Run(ctx, process.Command{
		Args:          []string{"git", "ls-remote", "--heads", res.URL},
		Env:           res.Env,
		Redact:        res.Redact,
		CaptureStdout: true,
	}, "Branches listed.", "Failed to get branches")
	c.recorder.ObserveGitOperation("ls-remote", time.Since(start), err == nil)
	if err != nil {
		return nil, remoteError("Failed to get branches", err)
	}
	return ParseBranches(outcome.Stdout), nil
}

// ListFiles clones repo without checking for the script file and returns
// every Python file as a slash-separated path relative to the clone root.
func (c *Client) ListFiles(ctx context.Context, repo *config.Repository) ([]string, error) {
	dir, err := c.Clone(ctx, repo, CloneOptions{SkipTargetCheck: true})
	if err != nil {
		return nil, err
	}
	return ScriptFiles(dir)
}

func (c *Client) targetPath(dir, filename string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(filename)) {
		return "", ferrors.ConfigError("invalid script file path").
			WithDetail(fmt.Sprintf("'%s' must be a relative path inside the repository", filename)).
			Build()
	}
	path := filepath.Join(dir, filepath.FromSlash(filename))
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return path, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to inspect script file").Build()
	}
	return "", ferrors.NotFoundError(fmt.Sprintf("Main script file '%s' not found in repository", filename)).
		WithContext("file", filename).
		Build()
}

func (c *Client) release(res *auth.Resolved) {
	if err := res.Close(); err != nil {
		slog.Warn("Failed to release repository credentials", logfields.Error(err))
	}
}

// remoteError converts a failed git invocation into a NetworkError. Start
// failures (git missing) are returned unchanged.
func remoteError(message string, err error) error {
	ce, ok := ferrors.AsClassified(err)
	if !ok || !ce.IsCategory(ferrors.CategoryExecution) {
		return err
	}
	code, started := ce.Context().Get("exit_code")
	if !started {
		return err
	}

	detail := ce.Detail()
	lower := strings.ToLower(detail)
	if strings.Contains(lower, "permission denied") || strings.Contains(lower, "publickey") {
		detail += sshHint
	}
	return ferrors.NetworkError(message).
		WithDetail(detail).
		WithContext("exit_code", code).
		Build()
}
