package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDataDir(t *testing.T) {
	t.Parallel()

	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, "quire-dev")

	tests := []struct {
		name     string
		userPath string
		sandbox  bool
		expected string
	}{
		{name: "Default Dir", userPath: "", sandbox: false, expected: DirName},
		{name: "Specific Path", userPath: "/some/path", sandbox: false, expected: "/some/path"},
		{name: "Sandbox Empty", userPath: "", sandbox: true, expected: filepath.Join(devBase, "default")},
		{name: "Sandbox Default Dir", userPath: DirName, sandbox: true, expected: filepath.Join(devBase, "default")},
		{name: "Sandbox Relative", userPath: "notes", sandbox: true, expected: filepath.Join(devBase, "notes")},
		{name: "Sandbox Traversal", userPath: "../bad/path", sandbox: true, expected: filepath.Join(devBase, "path")},
		{name: "Sandbox Temp Passthrough", userPath: filepath.Join(tempRoot, "mine"), sandbox: true, expected: filepath.Join(tempRoot, "mine")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveDataDir(tt.userPath, tt.sandbox))
		})
	}
}

func TestIsDevRun(t *testing.T) {
	assert.True(t, IsDevRun(), "tests always run from a go test binary")
}
