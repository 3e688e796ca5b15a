package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Username  string
	JSON      bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("GAME123_SERVER", "http://localhost:8080"),
		Username:  getEnvOrDefault("GAME123_USERNAME", ""),
		JSON:      false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
