// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevSecretKey is only acceptable outside production.
	DevSecretKey = "dev-secret-change-me"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	HTTP          HTTPConfig         `mapstructure:"http"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Auth          AuthConfig         `mapstructure:"auth"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Export        ExportConfig       `mapstructure:"export"`
	Validation    ValidationConfig   `mapstructure:"validation"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// Timezone used to interpret date-only filters.
	Timezone string `mapstructure:"timezone"`
}

// IsProduction reports whether the service runs with production guarantees.
func (a AppConfig) IsProduction() bool {
	return a.Environment == EnvProduction
}

// Location resolves Timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type HTTPConfig struct {
	Port           int      `mapstructure:"port"`
	MetricsPort    int      `mapstructure:"metrics_port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	URL            string `mapstructure:"url"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	AcquireTimeout int    `mapstructure:"acquire_timeout"` // milliseconds
}

// GetDSN returns the PostgreSQL connection string. An explicit URL wins over
// the individual fields.
func (p PostgresConfig) GetDSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// HasConnectionTarget reports whether a connection string or host was configured.
func (p PostgresConfig) HasConnectionTarget() bool {
	return p.URL != "" || p.Host != ""
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig controls where resumes and export artifacts live on disk.
type StorageConfig struct {
	ResumeRoot        string   `mapstructure:"resume_root"`
	ExportDir         string   `mapstructure:"export_dir"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxResumeBytes    int64    `mapstructure:"max_resume_bytes"`
}

// AuthConfig holds staff session settings and the bootstrap admin account.
type AuthConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	SessionTTL    int    `mapstructure:"session_ttl"` // minutes
	CookieName    string `mapstructure:"cookie_name"`
	CookieSecure  bool   `mapstructure:"cookie_secure"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// NotificationConfig holds settings for submission notifications.
type NotificationConfig struct {
	Email struct {
		Enabled         bool     `mapstructure:"enabled"`
		FromEmail       string   `mapstructure:"from_email"`
		HRRecipients    []string `mapstructure:"hr_recipients"`
		NotifyApplicant bool     `mapstructure:"notify_applicant"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Timeout int `mapstructure:"timeout"` // milliseconds
}

// Enabled reports whether any notification channel is on.
func (n NotificationConfig) Enabled() bool {
	return n.Email.Enabled || n.SMS.Enabled
}

type ExportConfig struct {
	IncludeCreatedAt bool   `mapstructure:"include_created_at"`
	SheetName        string `mapstructure:"sheet_name"`
}

type ValidationConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
