// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveDataDir resolves the .smol data directory from user input.
// It normalizes the input (accepting either a project dir or a .smol dir),
// appends .smol if needed, and follows redirect files so several working
// copies can share one marketplace database.
//
// Input normalization:
//   - "/path/to/project" -> "/path/to/project/.smol"
//   - "/path/to/project/.smol" -> "/path/to/project/.smol"
//   - "/path/to/data" (containing market.db) -> "/path/to/data"
//   - "" -> "~/.smol" (falling back to "./.smol" without a home directory)
func ResolveDataDir(path string) string {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", ".smol")
		}
		return filepath.Join(home, ".smol")
	}
	path = filepath.Clean(path)

	if filepath.Base(path) == ".smol" {
		return followRedirect(path)
	}

	// A directory already holding market.db is used as-is. This supports
	// SMOL_DIR pointing directly at a data directory.
	if _, err := os.Stat(filepath.Join(path, "market.db")); err == nil {
		return followRedirect(path)
	}

	return followRedirect(filepath.Join(path, ".smol"))
}

// followRedirect checks for a redirect file and follows it if present. A
// redirect file holds a relative path to the data directory actually in use.
func followRedirect(dataDir string) string {
	content, err := os.ReadFile(filepath.Join(dataDir, "redirect"))
	if err != nil {
		return dataDir
	}

	target := strings.TrimSpace(string(content))
	if target == "" {
		return dataDir
	}
	return filepath.Clean(filepath.Join(dataDir, target))
}

// DBPath returns the marketplace database file inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "market.db")
}

// LogPath returns the debug log file inside dataDir.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, "debug.log")
}

// ConfigPath returns the config file inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}
