package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExecutableDir returns the directory of the running migration binary,
// or the working directory when it cannot be determined.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil && strings.TrimSpace(exe) != "" {
		if resolved, resolveErr := filepath.EvalSymlinks(exe); resolveErr == nil && strings.TrimSpace(resolved) != "" {
			exe = resolved
		}
		return filepath.Dir(exe)
	}

	if wd, wdErr := os.Getwd(); wdErr == nil && strings.TrimSpace(wd) != "" {
		return wd
	}
	return "."
}

// ResolveRuntimePath resolves log and asset directories against the
// binary's directory; absolute paths are kept.
func ResolveRuntimePath(raw string, fallbackSubdir string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallbackSubdir)
		if target == "" {
			return ExecutableDir()
		}
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(ExecutableDir(), target))
}
