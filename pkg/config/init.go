package config

import (
	"fmt"
	"os"
)

// InitConfig writes a default configuration file to the given path (or
// the default location when path is empty) and returns the path used.
// Fails when the file already exists unless force is set.
func InitConfig(path string, force bool) (string, error) {
	if path == "" {
		path = GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := SaveConfig(GetDefaultConfig(), path); err != nil {
		return path, err
	}
	return path, nil
}
