// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, the config.<env>.yaml overlay, .env and the
// process environment, in increasing order of precedence.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := v.GetString("app.environment")
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func bindEnv(v *viper.Viper) {
	// database.postgres.host -> DATABASE_POSTGRES_HOST
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// setDefaults registers every key so AutomaticEnv overrides reach Unmarshal.
// Connection targets are left empty here; applyDefaults fills them for
// non-production environments only.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "hr-backoffice")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", EnvDevelopment)
	v.SetDefault("app.timezone", "UTC")

	v.SetDefault("http.port", 5000)
	v.SetDefault("http.metrics_port", 8080)
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("http.read_timeout", 15000)
	v.SetDefault("http.write_timeout", 60000)

	v.SetDefault("database.postgres.url", "")
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.max_connections", 25)
	v.SetDefault("database.postgres.max_idle", 5)
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.acquire_timeout", 5000)

	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("database.elasticsearch.enabled", false)
	v.SetDefault("database.elasticsearch.addresses", []string{})
	v.SetDefault("database.elasticsearch.username", "")
	v.SetDefault("database.elasticsearch.password", "")
	v.SetDefault("database.elasticsearch.index", "applications")

	v.SetDefault("storage.resume_root", "")
	v.SetDefault("storage.export_dir", "")
	v.SetDefault("storage.allowed_extensions", []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt"})
	v.SetDefault("storage.max_resume_bytes", 10<<20)

	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.session_ttl", 480)
	v.SetDefault("auth.cookie_name", "hr_session")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_password", "")

	v.SetDefault("notifications.email.enabled", false)
	v.SetDefault("notifications.email.from_email", "")
	v.SetDefault("notifications.email.hr_recipients", []string{})
	v.SetDefault("notifications.email.notify_applicant", false)
	v.SetDefault("notifications.sms.enabled", false)
	v.SetDefault("notifications.sms.topic_arn", "")
	v.SetDefault("notifications.aws.region", "us-east-1")
	v.SetDefault("notifications.timeout", 5000)

	v.SetDefault("export.include_created_at", false)
	v.SetDefault("export.sheet_name", "Applications")

	v.SetDefault("validation.registry_path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// loadEnvFile loads the first .env found near the working directory or the project root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig applies the conventional variable names that do not
// follow the nested key scheme.
func overrideEmptyConfig(cfg *Config) {
	if val := os.Getenv("APP_ENVIRONMENT"); val != "" {
		cfg.App.Environment = val
	}

	if cfg.Database.Postgres.URL == "" {
		if val := os.Getenv("DATABASE_URL"); val != "" {
			cfg.Database.Postgres.URL = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}

	if cfg.Auth.SecretKey == "" {
		if val := os.Getenv("SECRET_KEY"); val != "" {
			cfg.Auth.SecretKey = val
		}
	}

	if cfg.Storage.ResumeRoot == "" {
		if val := os.Getenv("UPLOAD_ROOT"); val != "" {
			cfg.Storage.ResumeRoot = val
		}
	}

	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_URL"); val != "" {
			cfg.Database.Redis.Address = strings.TrimPrefix(val, "redis://")
		}
	}
}

// applyDefaults fills local-development fallbacks. Production never gets a
// database target or secret invented for it.
func applyDefaults(cfg *Config) {
	if cfg.App.Environment == "" {
		cfg.App.Environment = EnvDevelopment
	}

	if !cfg.App.IsProduction() {
		if !cfg.Database.Postgres.HasConnectionTarget() {
			cfg.Database.Postgres.Host = "localhost"
		}
		if cfg.Database.Postgres.Database == "" {
			cfg.Database.Postgres.Database = "hr_backoffice"
		}
		if cfg.Database.Postgres.User == "" {
			cfg.Database.Postgres.User = "postgres"
		}
		if cfg.Auth.SecretKey == "" {
			cfg.Auth.SecretKey = DevSecretKey
		}
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Postgres.AcquireTimeout == 0 {
		cfg.Database.Postgres.AcquireTimeout = 5000
	}

	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "applications"
	}

	if cfg.Storage.ResumeRoot == "" {
		cfg.Storage.ResumeRoot = filepath.Join("uploads", "resumes")
	}
	if cfg.Storage.ExportDir == "" {
		cfg.Storage.ExportDir = filepath.Join(os.TempDir(), "hr-backoffice-exports")
	}
	if cfg.Storage.MaxResumeBytes == 0 {
		cfg.Storage.MaxResumeBytes = 10 << 20
	}

	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = 480
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "hr_session"
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 5000
	}
	if cfg.HTTP.MetricsPort == 0 {
		cfg.HTTP.MetricsPort = 8080
	}

	if cfg.Export.SheetName == "" {
		cfg.Export.SheetName = "Applications"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if !cfg.Database.Postgres.HasConnectionTarget() {
		return fmt.Errorf("database connection string is required (set DATABASE_URL or database.postgres.host)")
	}
	if cfg.Database.Postgres.URL == "" {
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}

	if cfg.Auth.SecretKey == "" {
		return fmt.Errorf("auth.secret_key is required (set SECRET_KEY)")
	}
	if cfg.App.IsProduction() && cfg.Auth.SecretKey == DevSecretKey {
		return fmt.Errorf("auth.secret_key must not use the development default in production")
	}

	if cfg.Database.Elasticsearch.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when search is enabled")
	}

	if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.FromEmail == "" {
		return fmt.Errorf("notifications.email.from_email is required when email is enabled")
	}
	if cfg.Notifications.SMS.Enabled && cfg.Notifications.SMS.TopicARN == "" {
		return fmt.Errorf("notifications.sms.topic_arn is required when sms is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
