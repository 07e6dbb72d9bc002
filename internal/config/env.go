package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envPaths are tried in order; the first one present is loaded.
var envPaths = []string{
	".env",
	".env.local",
	"../.env",
	"../../.env",
}

// LoadEnv loads the first .env file found and returns its path. A missing
// file is not an error since the variables may be set system-wide. Values
// already in the environment win over the file.
func LoadEnv() (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("error loading %s file: %w", envPath, err)
		}
		return envPath, nil
	}
	return "", nil
}

// getEnvOrDefault returns the trimmed variable or defaultValue when unset or blank.
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalid(key, "must be true or false")
	}
	return v, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(key, "must be an integer")
	}
	return v, nil
}

// getDuration accepts Go durations ("3s", "10m") and bare seconds.
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, invalid(key, "must be a duration such as 3s or 10m")
	}
	return d, nil
}
