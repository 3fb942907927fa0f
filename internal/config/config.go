// Package config loads the settings of the mydb command from the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when Load is given no path and the file exists
const DefaultEnvFile = ".env"

// Config holds connection and bookkeeping settings
type Config struct {
	URL         string
	Host        string
	Port        string
	Username    string
	Password    string
	Database    string
	LogFile     string
	JournalPath string
	LogLevel    string
}

// Load reads envPath into the environment and builds a Config from it.
// Variables already set in the environment win over the file.
// An empty envPath loads DefaultEnvFile if it is present.
func Load(envPath string) (*Config, error) {
	if envPath == "" {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", envPath, err)
	}

	cfg := &Config{
		URL:         os.Getenv("MYDB_URL"),
		Host:        getEnv("MYDB_HOST", "localhost"),
		Port:        getEnv("MYDB_PORT", ""),
		Username:    getEnv("MYDB_USERNAME", "root"),
		Password:    os.Getenv("MYDB_PASSWORD"),
		Database:    os.Getenv("MYDB_DATABASE"),
		LogFile:     os.Getenv("MYDB_LOG_FILE"),
		JournalPath: os.Getenv("MYDB_JOURNAL"),
		LogLevel:    getEnv("MYDB_LOG_LEVEL", "warn"),
	}
	return cfg, nil
}

// DatabaseURL returns URL when set, otherwise a mysql:// URL built from the
// host and credential settings
func (c *Config) DatabaseURL() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Host == "" {
		return "", fmt.Errorf("database host is required")
	}
	if c.Username == "" {
		return "", fmt.Errorf("database username is required")
	}

	host := c.Host
	if c.Port != "" {
		host += ":" + c.Port
	}
	u := &url.URL{
		Scheme: "mysql",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   host,
		Path:   "/" + c.Database,
	}
	if c.Password == "" {
		u.User = url.User(c.Username)
	}
	return u.String(), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
