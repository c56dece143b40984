package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrMapsDirNotFound is returned when no Steam root holds the maps directory.
var ErrMapsDirNotFound = errors.New("maps directory not found in any Steam library")

// SteamRoots returns candidate Steam installation roots for this machine,
// with override (if set) first.
func SteamRoots(override string) []string {
	home, _ := os.UserHomeDir()
	return steamRoots(runtime.GOOS, home, override)
}

func steamRoots(goos, home, override string) []string {
	var roots []string
	if override != "" {
		roots = append(roots, override)
	}

	switch goos {
	case "windows":
		roots = append(roots,
			`C:\Program Files (x86)\Steam`,
			`C:\Program Files\Steam`,
		)
	case "darwin":
		if home != "" {
			roots = append(roots, filepath.Join(home, "Library", "Application Support", "Steam"))
		}
	default:
		if home != "" {
			roots = append(roots,
				filepath.Join(home, ".steam", "steam"),
				filepath.Join(home, ".local", "share", "Steam"),
				filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
			)
		}
	}
	return roots
}

// FindMapsDir returns the first root/rel that is an existing directory.
// rel uses forward slashes, as in the server catalog.
func FindMapsDir(roots []string, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("%w: catalog entry has no maps directory", ErrMapsDirNotFound)
	}
	for _, root := range roots {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: looked for %q under %v", ErrMapsDirNotFound, rel, roots)
}
