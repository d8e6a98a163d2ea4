package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort string

	// Paths
	DataDir      string
	DatabaseFile string // $DATA_DIR/xstreamify.db
	SeedFile     string // optional JSON array imported when the vault is empty

	// Backups
	BackupDir           string // $DATA_DIR/backups
	BackupIntervalHours int    // 0 disables scheduled backups
	BackupKeep          int    // snapshots retained after pruning

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("BACKUP_INTERVAL_HOURS", 24)
	viper.SetDefault("BACKUP_KEEP", 7)

	dataDir := viper.GetString("DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".config", "xstreamify")
	} else {
		absPath, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for DATA_DIR: %w", err)
		}
		dataDir = absPath
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	backupDir := viper.GetString("BACKUP_DIR")
	if backupDir == "" {
		backupDir = filepath.Join(dataDir, "backups")
	}

	config := &Config{
		ServerPort: viper.GetString("SERVER_PORT"),

		DataDir:      dataDir,
		DatabaseFile: filepath.Join(dataDir, "xstreamify.db"),
		SeedFile:     viper.GetString("SEED_FILE"),

		BackupDir:           backupDir,
		BackupIntervalHours: viper.GetInt("BACKUP_INTERVAL_HOURS"),
		BackupKeep:          viper.GetInt("BACKUP_KEEP"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if config.BackupIntervalHours < 0 {
		return nil, fmt.Errorf("BACKUP_INTERVAL_HOURS must not be negative")
	}
	if config.BackupKeep < 1 {
		return nil, fmt.Errorf("BACKUP_KEEP must be at least 1")
	}

	return config, nil
}
