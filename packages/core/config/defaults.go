package config

import (
	"os"
	"path/filepath"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Curl:            "curl",
		Timeout:         30000, // 30 seconds
		Retries:         0,
		RetryDelay:      500,
		FollowRedirects: BoolPtr(false),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		RequestID:       BoolPtr(false),
		Output:          "console",
		History:         BoolPtr(false),
		HistoryPath:     DefaultHistoryPath(),
		LogLevel:        "warn",
		LogFormat:       "console",
		Verbose:         BoolPtr(false),
		NoColor:         BoolPtr(false),
	}
}

// DefaultHistoryPath is ~/.curlite/history.db, or a file in the working
// directory when the home directory is unknown.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "curlite-history.db"
	}
	return filepath.Join(home, ".curlite", "history.db")
}
