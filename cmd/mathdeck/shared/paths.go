package shared

import (
	"os"
	"path/filepath"
)

// DataDir returns the per-user directory for saved decks, accounts and logs.
// Falls back to a dotted directory in the working directory when the user
// config dir cannot be resolved.
func DataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".mathdeck"
	}
	return filepath.Join(base, "mathdeck")
}

// DefaultConfigPath returns the expected config file location. The file is
// optional; callers fall back to built-in defaults when it is absent.
func DefaultConfigPath() string {
	return filepath.Join(DataDir(), "config.hcl")
}
