package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"investor-desk/request-portal-backend/internal/reports/scheduler"
	"investor-desk/request-portal-backend/pkg/locale"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `json:"server"`
	Database    DatabaseConfig    `json:"database"`
	Security    SecurityConfig    `json:"security"`
	Logging     LoggingConfig     `json:"logging"`
	Transitions TransitionsConfig `json:"transitions"`
	Timeline    TimelineConfig    `json:"timeline"`
	Reports     ReportsConfig     `json:"reports"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	// URL, when set, is used as-is instead of the individual fields.
	URL            string        `json:"url"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// SecurityConfig holds bearer-token verification settings.
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"`
	JWTIssuer string `json:"jwt_issuer"`
}

// LoggingConfig
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// TransitionsConfig tunes the transition executor.
type TransitionsConfig struct {
	RetryOnConflict bool `json:"retry_on_conflict"`
}

// TimelineConfig
type TimelineConfig struct {
	DefaultLanguage string `json:"default_language"`
}

// ReportsConfig covers on-demand and scheduled reports.
type ReportsConfig struct {
	OutputDir       string                    `json:"output_dir"`
	SummaryCacheTTL time.Duration             `json:"summary_cache_ttl"`
	Schedules       []scheduler.Schedule      `json:"schedules"`
	Archive         scheduler.S3ArchiveConfig `json:"archive"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 20 * time.Second,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "investor_desk",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    30 * time.Minute,
		},
		Security: SecurityConfig{
			JWTIssuer: "investor-desk",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Timeline: TimelineConfig{
			DefaultLanguage: locale.English,
		},
		Reports: ReportsConfig{
			OutputDir:       "reports",
			SummaryCacheTTL: time.Minute,
		},
	}
}

// LoadConfig loads configuration from defaults, an optional .env file, an
// optional JSON file and environment variables, in that order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}
	config.Timeline.DefaultLanguage = locale.Normalize(config.Timeline.DefaultLanguage)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) error {
	strs := map[string]*string{
		"SERVER_HOST":               &config.Server.Host,
		"DATABASE_URL":              &config.Database.URL,
		"DATABASE_HOST":             &config.Database.Host,
		"DATABASE_USER":             &config.Database.User,
		"DATABASE_PASSWORD":         &config.Database.Password,
		"DATABASE_DBNAME":           &config.Database.DBName,
		"DATABASE_SSLMODE":          &config.Database.SSLMode,
		"JWT_SECRET":                &config.Security.JWTSecret,
		"JWT_ISSUER":                &config.Security.JWTIssuer,
		"LOG_LEVEL":                 &config.Logging.Level,
		"LOG_FORMAT":                &config.Logging.Format,
		"TIMELINE_DEFAULT_LANGUAGE": &config.Timeline.DefaultLanguage,
		"REPORTS_OUTPUT_DIR":        &config.Reports.OutputDir,
		"REPORTS_ARCHIVE_BUCKET":    &config.Reports.Archive.Bucket,
		"REPORTS_ARCHIVE_PREFIX":    &config.Reports.Archive.Prefix,
		"REPORTS_ARCHIVE_REGION":    &config.Reports.Archive.Region,
		"REPORTS_ARCHIVE_ENDPOINT":  &config.Reports.Archive.Endpoint,
	}
	for key, dest := range strs {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dest = v
		}
	}

	ints := map[string]*int{
		"SERVER_PORT":   &config.Server.Port,
		"DATABASE_PORT": &config.Database.Port,
	}
	for key, dest := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dest = n
		}
	}

	if v := os.Getenv("TRANSITIONS_RETRY_ON_CONFLICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRANSITIONS_RETRY_ON_CONFLICT: %w", err)
		}
		config.Transitions.RetryOnConflict = b
	}
	if v := os.Getenv("REPORTS_SUMMARY_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REPORTS_SUMMARY_CACHE_TTL: %w", err)
		}
		config.Reports.SummaryCacheTTL = d
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.URL == "" && c.Database.DBName == "" {
		errs = append(errs, errors.New("database.db_name is required"))
	}
	if c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwt_secret is required"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not json or console", c.Logging.Format))
	}
	seen := make(map[string]bool, len(c.Reports.Schedules))
	for _, s := range c.Reports.Schedules {
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("duplicate report schedule %q", s.Name))
		}
		seen[s.Name] = true
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
