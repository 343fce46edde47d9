package pyenv

import (
	"context"
	"path/filepath"
	"runtime"

	"git.home.luguber.info/inful/coderunner/internal/process"
)

// VenvDir is the name of the virtual environment directory next to the script.
const VenvDir = ".venv"

// DefaultUV is the uv binary looked up on PATH.
const DefaultUV = "uv"

// VenvManager creates virtual environments with uv.
type VenvManager struct {
	runner process.Runner
	uv     string
}

// NewVenvManager returns a manager running uv through runner.
func NewVenvManager(runner process.Runner) *VenvManager {
	return &VenvManager{runner: runner, uv: DefaultUV}
}

// Prepare creates base/.venv for the given Python version and returns its path.
func (v *VenvManager) Prepare(ctx context.Context, version, base string) (string, error) {
	venv := filepath.Join(base, VenvDir)
	_, err := v.runner.Run(ctx, process.Command{
		Args: []string{v.uv, "venv", "-p", version, venv},
	}, "Environment created successfully.", "Environment creation failed.")
	if err != nil {
		return "", err
	}
	return venv, nil
}

// Python returns the interpreter inside venv.
func Python(venv string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venv, "Scripts", "python.exe")
	}
	return filepath.Join(venv, "bin", "python")
}
