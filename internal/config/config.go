package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Planning PlanningConfig `mapstructure:"planning"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// PlanningConfig holds the site defaults for production scheduling. All
// durations are minutes.
type PlanningConfig struct {
	DispatchLeadMinutes float64 `mapstructure:"dispatch_lead_minutes"`
	PackagingMinutes    float64 `mapstructure:"packaging_minutes"`
	QCMinutes           float64 `mapstructure:"qc_minutes"`
	SynthesisMinutes    float64 `mapstructure:"synthesis_minutes"`
	OveragePercent      float64 `mapstructure:"overage_percent"`
	ShelfLifeMinutes    float64 `mapstructure:"shelf_life_minutes"`
}

// ReportsConfig holds schedule export configuration
type ReportsConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	SiteName  string `mapstructure:"site_name"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/ordering.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Planning defaults
	viper.SetDefault("planning.dispatch_lead_minutes", 60.0)
	viper.SetDefault("planning.packaging_minutes", 15.0)
	viper.SetDefault("planning.qc_minutes", 30.0)
	viper.SetDefault("planning.synthesis_minutes", 45.0)
	viper.SetDefault("planning.overage_percent", 10.0)
	viper.SetDefault("planning.shelf_life_minutes", 600.0)

	// Report defaults
	viper.SetDefault("reports.output_dir", "generated_reports")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("database.path", "ORDERING_DB_PATH")
	viper.BindEnv("server.port", "ORDERING_PORT")
	viper.BindEnv("reports.site_name", "ORDERING_SITE_NAME")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	// Validate planning stage durations
	if c.Planning.DispatchLeadMinutes < 0 {
		return fmt.Errorf("planning.dispatch_lead_minutes must not be negative")
	}
	if c.Planning.PackagingMinutes < 0 {
		return fmt.Errorf("planning.packaging_minutes must not be negative")
	}
	if c.Planning.QCMinutes < 0 {
		return fmt.Errorf("planning.qc_minutes must not be negative")
	}
	if c.Planning.SynthesisMinutes < 0 {
		return fmt.Errorf("planning.synthesis_minutes must not be negative")
	}
	if c.Planning.OveragePercent < 0 {
		return fmt.Errorf("planning.overage_percent must not be negative")
	}
	if c.Planning.ShelfLifeMinutes <= 0 {
		return fmt.Errorf("planning.shelf_life_minutes must be positive")
	}

	if c.Reports.SiteName == "" {
		return fmt.Errorf("reports.site_name is required")
	}

	return nil
}
