// Package config load application configuration from file, .env and environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nishanth-cyber/Job-search/internal/database"

	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// Config is the root configuration of the api server
type Config struct {
	Port           int                `mapstructure:"port"`
	AllowOrigin    string             `mapstructure:"allow_origin"`
	SecretKey      string             `mapstructure:"secret_key"`
	TokenTTL       time.Duration      `mapstructure:"token_ttl"`
	CookieName     string             `mapstructure:"cookie_name"`
	RateLimit      uint               `mapstructure:"rate_limit_requests_per_second"`
	MaxUploadBytes int64              `mapstructure:"max_upload_bytes"`
	DB             database.DBConfig  `mapstructure:"db"`
	Admin          database.AdminSeed `mapstructure:"admin"`
	Redis          RedisConfig        `mapstructure:"redis"`
	Storage        StorageConfig      `mapstructure:"storage"`
	Scorer         ScorerConfig       `mapstructure:"scorer"`
	Log            LogConfig          `mapstructure:"log"`
}

// RedisConfig enable redis backed token blacklist and rate limiter when Addr is set
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig enable Google Cloud Storage for blobs when Bucket is set
type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
}

// ScorerConfig select and configure external resume scorer
type ScorerConfig struct {
	// Provider is either "webhook" or "gemini"
	Provider       string        `mapstructure:"provider"`
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	Gemini         GeminiConfig  `mapstructure:"gemini"`
}

// GeminiConfig configure Gemini scorer
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// LogConfig configure zap logger
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// Scorer providers
const (
	ProviderWebhook = "webhook"
	ProviderGemini  = "gemini"
)

// envAlias keep legacy environment variable names working
var envAlias = map[string]string{
	"db.use_connection_str": "USE_CONNECTION_STR",
	"db.connection_str":     "DB_CONNECTION_STR",
	"scorer.url":            "N8N_URL",
	"scorer.gemini.api_key": "GEMINI_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("allow_origin", "http://localhost:3000")
	v.SetDefault("secret_key", "")
	v.SetDefault("token_ttl", time.Hour)
	v.SetDefault("cookie_name", "jwt")
	v.SetDefault("rate_limit_requests_per_second", 5)
	v.SetDefault("max_upload_bytes", 10<<20)

	v.SetDefault("db.host", "")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.database", "")
	v.SetDefault("db.use_connection_str", false)
	v.SetDefault("db.connection_str", "")

	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.bucket", "")

	v.SetDefault("scorer.provider", ProviderWebhook)
	v.SetDefault("scorer.url", "")
	v.SetDefault("scorer.connect_timeout", 30*time.Second)
	v.SetDefault("scorer.read_timeout", 60*time.Second)
	v.SetDefault("scorer.max_attempts", 1)
	v.SetDefault("scorer.gemini.api_key", "")
	v.SetDefault("scorer.gemini.model", "")

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Load read configuration. When cfgFile is empty an optional job-search.yaml in
// working directory is used. Environment variables always win over file values.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	cfg, err := read(v, cfgFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase read only database section, for maintenance commands that never start the server
func LoadDatabase(v *viper.Viper, cfgFile string) (*database.DBConfig, error) {
	cfg, err := read(v, cfgFile)
	if err != nil {
		return nil, err
	}
	return &cfg.DB, nil
}

func read(v *viper.Viper, cfgFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAlias {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s environment variable: %w", env, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("job-search")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

// Validate check value that have no sensible default
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret_key (SECRET_KEY) is required")
	}
	if c.Scorer.MaxAttempts < 1 {
		c.Scorer.MaxAttempts = 1
	}
	switch c.Scorer.Provider {
	case ProviderWebhook:
		if c.Scorer.URL == "" {
			return errors.New("scorer.url (SCORER_URL) is required for webhook scorer")
		}
	case ProviderGemini:
		if c.Scorer.Gemini.APIKey == "" {
			return errors.New("scorer.gemini.api_key (GEMINI_API_KEY) is required for gemini scorer")
		}
	default:
		return fmt.Errorf("unknown scorer provider %q", c.Scorer.Provider)
	}
	if c.RateLimit == 0 {
		c.RateLimit = 5
	}
	return nil
}

// AllowOrigins split comma separated AllowOrigin
func (c *Config) AllowOrigins() []string {
	origins := []string{}
	for _, o := range strings.Split(c.AllowOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
