package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the data directory created next to a workspace root.
const DirName = ".quire"

// ConfigName is the optional configuration file at a workspace root.
const ConfigName = "quire.yaml"

// FindRoot recursively looks upwards for a root indicator: a .quire
// directory or a quire.yaml file. It returns the absolute path of the first
// directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, DirName) || hasFile(dir, ConfigName) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
