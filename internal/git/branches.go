package git

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	ferrors "git.home.luguber.info/inful/coderunner/internal/foundation/errors"
)

// ScriptExtension is the file suffix ListFiles collects.
const ScriptExtension = ".py"

// Option is one entry of a selection list: {"value": ..., "label": ...}.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options wraps values as options whose label equals the value.
func Options(values []string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: v, Label: v})
	}
	return out
}

// ParseBranches extracts branch names from `git ls-remote --heads` output.
// Each line is "<sha>\t<ref>" or just "<ref>"; non-branch refs are skipped.
func ParseBranches(lines []string) []Option {
	var branches []string
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ref := plumbing.ReferenceName(fields[len(fields)-1])
		if !ref.IsBranch() {
			continue
		}
		branches = append(branches, ref.Short())
	}
	return Options(branches)
}

// ScriptFiles walks root, skipping .git directories, and returns the
// slash-separated relative paths of all script files in lexical order.
func ScriptFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), ScriptExtension) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to list repository files").Build()
	}
	sort.Strings(files)
	return files, nil
}
