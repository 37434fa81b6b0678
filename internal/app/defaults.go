package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - CRAFTBENCH_CONFIG_PATH: config file location (default: ~/.config/craftbench.toml)
//   - CRAFTBENCH_HOME: base directory for craftbench data (default: ~/.local/share/craftbench)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking CRAFTBENCH_CONFIG_PATH first,
// then falling back to the default ~/.config/craftbench.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("CRAFTBENCH_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "craftbench.toml"), nil
}

// getBaseDir returns the base directory for craftbench data, checking
// CRAFTBENCH_HOME first, then falling back to the XDG default
// ~/.local/share/craftbench.
func getBaseDir() (string, error) {
	if path := os.Getenv("CRAFTBENCH_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "craftbench"), nil
}
