package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"elder-risk-aggregator/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Logging     logging.Config    `mapstructure:"logging"`
	Docstore    DocstoreConfig    `mapstructure:"docstore"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Subjects    []string          `mapstructure:"subjects"`
	Export      ExportConfig      `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DocstoreConfig encapsulates document-store (MongoDB) connectivity.
type DocstoreConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for snapshot persistence.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AggregationConfig tunes the signal aggregation pipeline.
type AggregationConfig struct {
	DefaultWindowDays  int           `mapstructure:"default_window_days"`
	DomainTimeout      time.Duration `mapstructure:"domain_timeout"`
	RiskHistoryLimit   int           `mapstructure:"risk_history_limit"`
	RecentEventsLimit  int           `mapstructure:"recent_events_limit"`
	LonelinessKeywords []string      `mapstructure:"loneliness_keywords"`
	HealthKeywords     []string      `mapstructure:"health_keywords"`
}

// SchedulerConfig governs refresh cadence for monitored subjects.
type SchedulerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ELDERWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "elderwatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("docstore.uri", "mongodb://localhost:27017")
	v.SetDefault("docstore.database", "eldercare")
	v.SetDefault("docstore.connect_timeout", "10s")

	v.SetDefault("aggregation.default_window_days", 7)
	v.SetDefault("aggregation.domain_timeout", "10s")
	v.SetDefault("aggregation.risk_history_limit", 10)
	v.SetDefault("aggregation.recent_events_limit", 20)
	v.SetDefault("aggregation.loneliness_keywords", []string{
		"alone", "lonely", "nobody", "no one", "isolated", "miss", "wish someone",
	})
	v.SetDefault("aggregation.health_keywords", []string{
		"pain", "hurt", "ache", "sick", "ill", "doctor", "medicine", "hospital",
		"dizzy", "weak", "tired", "can't breathe", "chest pain",
	})

	v.SetDefault("scheduler.interval", "15m")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Docstore.URI == "" {
		return fmt.Errorf("docstore.uri is required")
	}
	if c.Docstore.Database == "" {
		return fmt.Errorf("docstore.database is required")
	}
	if c.Aggregation.DefaultWindowDays < 1 {
		return fmt.Errorf("aggregation.default_window_days must be at least 1")
	}
	if c.Aggregation.DomainTimeout <= 0 {
		return fmt.Errorf("aggregation.domain_timeout must be greater than zero")
	}
	if c.Aggregation.RiskHistoryLimit <= 0 {
		return fmt.Errorf("aggregation.risk_history_limit must be greater than zero")
	}
	if c.Aggregation.RecentEventsLimit < 0 {
		return fmt.Errorf("aggregation.recent_events_limit cannot be negative")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}

// ResolveWindowDays returns either the CLI override or config default.
func (c *Config) ResolveWindowDays(override int) int {
	if override > 0 {
		return override
	}
	return c.Aggregation.DefaultWindowDays
}
