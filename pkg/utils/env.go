package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from multiple .env files and returns
// the merged environment. Variables already set in the process take
// precedence over file values; missing files are skipped. A file that
// exists but cannot be parsed is reported in the returned error while the
// remaining sources are still merged.
func LoadEnv(files ...string) (map[string]string, error) {
	config := make(map[string]string)

	var errList []error
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}

		values, err := godotenv.Read(file)
		if err != nil {
			errList = append(errList, fmt.Errorf("failed to load %s: %w", file, err))
			continue
		}

		for key, value := range values {
			config[key] = value
		}
	}

	// Process environment wins over files
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if ok && key != "" {
			config[key] = value
		}
	}

	return config, errors.Join(errList...)
}

// EnvFile returns the .env path named by ENV_FILE, defaulting to ".env"
func EnvFile() string {
	if file := os.Getenv("ENV_FILE"); file != "" {
		return file
	}
	return ".env"
}
