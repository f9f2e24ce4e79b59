package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Models   ModelsConfig
	Supabase SupabaseConfig
	Drive    DriveConfig
	Sync     SyncConfig
	MongoDB  MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// ModelsConfig points at the pretrained model artifacts.
type ModelsConfig struct {
	Dir string
}

// SupabaseConfig contains credentials for the remote prediction table.
// Both fields are required; the process refuses to start without them.
type SupabaseConfig struct {
	URL string
	Key string
}

// DriveConfig contains configuration for the shared predictions workbook.
// The workbook feature is disabled when CredentialsPath is empty.
type DriveConfig struct {
	CredentialsPath string
	FolderID        string
	Filename        string
}

// SyncConfig holds the optional workbook-sync job settings. An empty cron
// expression disables the job.
type SyncConfig struct {
	CronSchedule string
	Timezone     string
}

// MongoDBConfig holds settings for the optional inference audit log.
// Auditing is disabled when URI is empty.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Models: ModelsConfig{
			Dir: getenvWithDefault("MODELS_DIR", "models"),
		},
		Supabase: SupabaseConfig{
			URL: os.Getenv("SUPABASE_URL"),
			Key: os.Getenv("SUPABASE_KEY"),
		},
		Drive: DriveConfig{
			CredentialsPath: os.Getenv("GOOGLE_DRIVE_CREDENTIALS_PATH"),
			FolderID:        os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
			Filename:        getenvWithDefault("WORKBOOK_FILENAME", "predicciones_avicolas.xlsx"),
		},
		Sync: SyncConfig{
			CronSchedule: os.Getenv("SYNC_CRON_SCHEDULE"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Bogota"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "avipredict"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Models.Dir == "" {
		return errors.New("MODELS_DIR must be provided")
	}

	switch {
	case c.Supabase.URL == "":
		return errors.New("SUPABASE_URL must be provided")
	case c.Supabase.Key == "":
		return errors.New("SUPABASE_KEY must be provided")
	}

	if c.Drive.CredentialsPath != "" {
		if c.Drive.FolderID == "" {
			return errors.New("GOOGLE_DRIVE_FOLDER_ID must be provided when drive credentials are set")
		}
		if c.Drive.Filename == "" {
			return errors.New("WORKBOOK_FILENAME must not be empty")
		}
	}

	if c.Sync.CronSchedule != "" && c.Drive.CredentialsPath == "" {
		return errors.New("SYNC_CRON_SCHEDULE requires drive credentials")
	}

	return nil
}

// WorkbookEnabled reports whether the Drive workbook feature is configured.
func (c *Config) WorkbookEnabled() bool {
	return c.Drive.CredentialsPath != ""
}

// AuditEnabled reports whether the inference audit log is configured.
func (c *Config) AuditEnabled() bool {
	return c.MongoDB.URI != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
