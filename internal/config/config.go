package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DBPath      string `yaml:"db_path"`
	ExportDir   string `yaml:"export_dir"`
	DefaultUser string `yaml:"default_user"`
	Output      string `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/salescope/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		Output: "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Load ~/.config/salescope/config.yaml if it exists
	if err := loadYAMLConfig(cfg); err != nil {
		// YAML config is optional, so we don't fail if it doesn't exist
	}

	// Override with environment variables
	if dbPath := getEnvOrFile("SALESCOPE_DB_PATH", "SALESCOPE_DB_PATH_FILE"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if exportDir := os.Getenv("SALESCOPE_EXPORT_DIR"); exportDir != "" {
		cfg.ExportDir = exportDir
	}
	if defaultUser := os.Getenv("SALESCOPE_USER"); defaultUser != "" {
		cfg.DefaultUser = defaultUser
	}
	if output := os.Getenv("SALESCOPE_OUTPUT"); output != "" {
		cfg.Output = output
	}

	// Set defaults if not configured
	if cfg.DBPath == "" {
		// Check for project-local database first
		if _, err := os.Stat(".salescope/salescope.db"); err == nil {
			cfg.DBPath = ".salescope/salescope.db"
		} else {
			// Fall back to user-global database
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.DBPath = filepath.Join(homeDir, ".local", "share", "salescope", "salescope.db")
		}
	}

	if cfg.ExportDir == "" {
		if cfg.DBPath == ".salescope/salescope.db" {
			cfg.ExportDir = ".salescope/exports"
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.ExportDir = filepath.Join(homeDir, ".local", "share", "salescope", "exports")
		}
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/salescope/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "salescope", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		if dir == homeDir {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
