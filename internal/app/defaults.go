package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables, in order of precedence:
//   - GALLERY_CONFIG_PATH, then $XDG_CONFIG_HOME/gallery.toml (default: ~/.config/gallery.toml)
//   - GALLERY_HOME, then $XDG_DATA_HOME/gallery (default: ~/.local/share/gallery)
func GetDefaults() (map[string]string, error) {
	configPath, err := resolvePath("GALLERY_CONFIG_PATH", "XDG_CONFIG_HOME", []string{".config"}, "gallery.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := resolvePath("GALLERY_HOME", "XDG_DATA_HOME", []string{".local", "share"}, "gallery")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// resolvePath returns $override when set, otherwise name under $xdgVar, otherwise
// name under the home directory joined with homeRel.
func resolvePath(override, xdgVar string, homeRel []string, name string) (string, error) {
	if path := os.Getenv(override); path != "" {
		return path, nil
	}
	if dir := os.Getenv(xdgVar); dir != "" {
		return filepath.Join(dir, name), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append(append([]string{homeDir}, homeRel...), name)...), nil
}
