package pyenv

import (
	"log/slog"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
	"git.home.luguber.info/inful/coderunner/internal/logfields"
)

// ScriptName is the file inline code is written to.
const ScriptName = "script.py"

const excerptLimit = 1000

// Excerpt shortens long scripts to their first and last 500 characters.
func Excerpt(script string) string {
	runes := []rune(script)
	if len(runes) <= excerptLimit {
		return script
	}
	half := excerptLimit / 2
	return string(runes[:half]) + "\n...\n" + string(runes[len(runes)-half:])
}

// WriteScript writes code to dir/script.py and returns the path.
func WriteScript(dir, code string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create script directory").Build()
	}
	path := filepath.Join(dir, ScriptName)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write script file").Build()
	}
	slog.Info("Processing script", logfields.File(path), logfields.Detail(Excerpt(code)))
	return path, nil
}
