package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"spacenow/internal/cache"
)

// Config is the top-level configuration.
type Config struct {
	Server ServerConfig      `mapstructure:"server"`
	NASA   NASAConfig        `mapstructure:"nasa"`
	Cache  cache.CacheConfig `mapstructure:"cache"`
	Cohere CohereConfig      `mapstructure:"cohere"`
	Logger LoggerConfig      `mapstructure:"logger"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// NASAConfig configures the upstream NASA gateway. APIKey falls back
// to the public rate-limited DEMO_KEY when unset. Timeout bounds each
// individual upstream attempt, not a whole aggregate request.
type NASAConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retries     int           `mapstructure:"retries"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}

// CohereConfig configures the AI assistant passthrough. An empty
// APIKey leaves the assistant in canned-fallback mode.
type CohereConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggerConfig configures zap.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LoadConfig reads configuration from config files and SPACENOW_*
// environment variables.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/spacenow")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SPACENOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.BindEnv("nasa.api_key", "SPACENOW_NASA_API_KEY", "NASA_KEY")
	viper.BindEnv("nasa.timeout", "SPACENOW_NASA_TIMEOUT", "NASA_TIMEOUT_MS")
	viper.BindEnv("cohere.api_key", "SPACENOW_COHERE_API_KEY", "COHERE_API_KEY")
	viper.BindEnv("server.port", "SPACENOW_SERVER_PORT", "PORT")
	viper.BindEnv("logger.level", "SPACENOW_LOGGER_LEVEL", "LOG_LEVEL")
	viper.BindEnv("cache.backend", "SPACENOW_CACHE_BACKEND")
	viper.BindEnv("cache.addresses", "SPACENOW_CACHE_ADDRESSES")
	viper.BindEnv("cache.password", "SPACENOW_CACHE_PASSWORD")
	viper.BindEnv("cache.database", "SPACENOW_CACHE_DATABASE")
	viper.BindEnv("cache.single_flight", "SPACENOW_CACHE_SINGLE_FLIGHT")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults plus env cover everything.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// The addresses env var arrives as a comma-separated string.
	if addressesStr := viper.GetString("cache.addresses"); addressesStr != "" {
		addresses := strings.Split(addressesStr, ",")
		for i, addr := range addresses {
			addresses[i] = strings.TrimSpace(addr)
		}
		config.Cache.Addresses = addresses
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5173)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "120s")

	// NASA upstream defaults
	viper.SetDefault("nasa.api_key", "DEMO_KEY")
	viper.SetDefault("nasa.base_url", "https://api.nasa.gov")
	viper.SetDefault("nasa.timeout", "12s")
	viper.SetDefault("nasa.retries", 2)
	viper.SetDefault("nasa.backoff_base", "800ms")

	// Cache defaults: in-process memory map, no de-duplication
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.single_flight", false)
	viper.SetDefault("cache.addresses", []string{"localhost:6379"})
	viper.SetDefault("cache.password", "")
	viper.SetDefault("cache.database", 0)
	viper.SetDefault("cache.dial_timeout", "5s")
	viper.SetDefault("cache.read_timeout", "3s")
	viper.SetDefault("cache.write_timeout", "3s")

	// Cohere defaults
	viper.SetDefault("cohere.api_key", "")
	viper.SetDefault("cohere.base_url", "https://api.cohere.ai")
	viper.SetDefault("cohere.timeout", "30s")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "json")
	viper.SetDefault("logger.output_path", "stdout")
}

// GetAddress returns the full listen address.
func (sc *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", sc.Host, sc.Port)
}
