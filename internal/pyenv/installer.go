package pyenv

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/coderunner/internal/logfields"
	"git.home.luguber.info/inful/coderunner/internal/process"
)

const (
	okInstall   = "Installation successful."
	failInstall = "Installation failed."
)

// Manifest identifies how a repository declares its dependencies.
type Manifest string

const (
	ManifestNone         Manifest = "none"
	ManifestUVLock       Manifest = "uv.lock"
	ManifestRequirements Manifest = "requirements.txt"
)

// DetectManifest inspects dir. A pyproject.toml with a uv.lock wins over a
// requirements.txt. The returned path is the file to install from.
func DetectManifest(dir string) (Manifest, string) {
	if exists(filepath.Join(dir, "pyproject.toml")) && exists(filepath.Join(dir, "uv.lock")) {
		return ManifestUVLock, filepath.Join(dir, "uv.lock")
	}
	if req := filepath.Join(dir, "requirements.txt"); exists(req) {
		return ManifestRequirements, req
	}
	return ManifestNone, ""
}

// Installer installs dependencies into a virtual environment.
type Installer struct {
	runner process.Runner
	uv     string
}

// NewInstaller returns an installer running uv through runner.
func NewInstaller(runner process.Runner) *Installer {
	return &Installer{runner: runner, uv: DefaultUV}
}

// InstallPackages installs each package on its own so that a failure names
// the package that broke.
func (i *Installer) InstallPackages(ctx context.Context, venv string, packages []string) error {
	for _, pkg := range packages {
		slog.Info("Installing package", logfields.Package(pkg))
		_, err := i.runner.Run(ctx, process.Command{
			Args: []string{i.uv, "pip", "install", pkg},
			Env:  map[string]string{"VIRTUAL_ENV": venv},
		}, okInstall, failInstall)
		if err != nil {
			return err
		}
	}
	return nil
}

// InstallForRepository installs the dependencies declared in repoDir.
func (i *Installer) InstallForRepository(ctx context.Context, venv, repoDir string) error {
	manifest, path := DetectManifest(repoDir)

	var cmd process.Command
	switch manifest {
	case ManifestUVLock:
		slog.Info("Running uv sync", logfields.Path(repoDir))
		cmd = process.Command{
			Args: []string{i.uv, "sync", "--inexact"},
			Dir:  repoDir,
			Env:  map[string]string{"UV_PROJECT_ENVIRONMENT": venv},
		}
	case ManifestRequirements:
		slog.Info("Installing packages from requirements.txt", logfields.Path(path))
		cmd = process.Command{
			Args: []string{i.uv, "pip", "install", "-r", path},
			Env:  map[string]string{"VIRTUAL_ENV": venv},
		}
	default:
		slog.Info("No dependencies file found")
		return nil
	}

	_, err := i.runner.Run(ctx, cmd, okInstall, failInstall)
	return err
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
