package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv exports variables from path without overriding ones already set
// in the environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// LoadConfigFrom loads configuration from a directory or a config file path.
// An empty path falls back to the default search locations.
func LoadConfigFrom(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return LoadConfig()
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config path %q does not exist", path)
	case err != nil:
		return nil, fmt.Errorf("stat config path: %w", err)
	case info.IsDir():
		return LoadConfig(path)
	default:
		return LoadConfig(filepath.Dir(path))
	}
}
