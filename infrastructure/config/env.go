package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix starts every environment variable that overrides a config key
const EnvPrefix = "LETITFLOW_"

// EnvName returns the variable overriding key, e.g. server.address -> LETITFLOW_SERVER_ADDRESS
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// LoadDotEnv adds the variables in path to the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with every LETITFLOW_* variable lookup finds and
// returns the keys that were overridden. cfg is left unchanged on error.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) ([]string, error) {
	candidate := cloneConfig(cfg)

	var applied []string
	for _, key := range Keys() {
		value, ok := lookup(EnvName(key))
		if !ok {
			continue
		}
		if err := fields[key].set(candidate, strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvName(key), err)
		}
		applied = append(applied, key)
	}
	if len(applied) == 0 {
		return nil, nil
	}

	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	*cfg = *candidate
	return applied, nil
}
