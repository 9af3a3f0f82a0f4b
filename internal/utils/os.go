package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is used when the executable path cannot be determined.
const DefaultName = "infodisplay"

// ExecutableName returns the base name of the running binary.
func ExecutableName() string {
	executable, err := os.Executable()
	if err != nil {
		return DefaultName
	}
	return filepath.Base(executable)
}

// ExpandPath expands a leading ~ to the user's home directory and resolves
// relative paths against base. An empty path stays empty.
func ExpandPath(path, base string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	if !filepath.IsAbs(path) && base != "" {
		path = filepath.Join(base, path)
	}
	return path
}
