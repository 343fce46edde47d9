package git

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBranches(t *testing.T) {
	require.Equal(t,
		[]Option{{Value: "main", Label: "main"}, {Value: "dev", Label: "dev"}},
		ParseBranches([]string{"refs/heads/main", "refs/heads/dev"}))

	lines := []string{
		"3f2a1c0d9e8b7a6f5e4d3c2b1a0f9e8d7c6b5a49\trefs/heads/feature/login",
		"",
		"   ",
		"0123456789abcdef0123456789abcdef01234567\trefs/tags/v1.0.0",
		"0123456789abcdef0123456789abcdef01234567\trefs/heads/release",
	}
	require.Equal(t,
		[]Option{{Value: "feature/login", Label: "feature/login"}, {Value: "release", Label: "release"}},
		ParseBranches(lines))

	require.Empty(t, ParseBranches(nil))
}

func TestOptionJSON(t *testing.T) {
	data, err := json.Marshal(Options([]string{"main"}))
	require.NoError(t, err)
	require.JSONEq(t, `[{"value":"main","label":"main"}]`, string(data))
}

func TestScriptFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.py", "a/c.py", "a/readme.md", ".git/hooks/x.py", "sub/.git/y.py"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	files, err := ScriptFiles(root)
	require.NoError(t, err)
	require.Equal(t, []string{"a/c.py", "b.py"}, files)
}
