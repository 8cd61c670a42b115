package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun reports whether the process was built by `go run` or `go test`.
// Both build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}

	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataDir returns the directory the store should live in. With
// sandbox set, paths outside the system temp directory are re-rooted under
// <tmp>/quire-dev/<base> so development runs never touch real data.
func ResolveDataDir(userPath string, sandbox bool) string {
	if !sandbox {
		if userPath == "" {
			return DirName
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	tempRoot := os.TempDir()

	// Already sandboxed (t.TempDir() and friends).
	if rel, err := filepath.Rel(tempRoot, clean); err == nil && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(userPath)
	if userPath == "" || name == "." || name == DirName || name == string(os.PathSeparator) {
		name = "default"
	}
	return filepath.Join(tempRoot, "quire-dev", name)
}
