package config

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	// DefaultClientName is reported to the server in the Authorization header.
	DefaultClientName = "jellyplay"
	// DefaultClientVersion is reported to the server in the Authorization header.
	DefaultClientVersion = "1.0.0"
	// DefaultMaxBitrate is substituted when no bitrate is configured (120 Mbps).
	DefaultMaxBitrate = 120_000_000
	// DefaultProgressDebounce coalesces rapid scrubbing into a single progress report.
	DefaultProgressDebounce = "700ms"
)

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	Jellyfin              struct {
		URL           string `mapstructure:"url"`
		AccessToken   string `mapstructure:"access_token"`
		UserID        string `mapstructure:"user_id"`
		DeviceID      string `mapstructure:"device_id"`
		DeviceName    string `mapstructure:"device_name"`
		ClientName    string `mapstructure:"client_name"`
		ClientVersion string `mapstructure:"client_version"`
	} `mapstructure:"jellyfin"`
	Playback struct {
		MaxBitrate       int    `mapstructure:"max_bitrate"`
		NativePlayer     bool   `mapstructure:"native_player"`
		SubtitleLanguage string `mapstructure:"subtitle_language"` // auto-select language code, e.g. "eng" or "en"
		AudioLanguage    string `mapstructure:"audio_language"`
		SyncStreams      bool   `mapstructure:"sync_streams"` // experimental: carry audio/subtitle choice to adjacent episodes
		ProgressDebounce string `mapstructure:"progress_debounce"`
	} `mapstructure:"playback"`
	Server struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	LogLevel string `mapstructure:"log_level"`
	Cache    struct {
		Provider      string `mapstructure:"provider"` // "memory" or "redis"
		Size          int    `mapstructure:"size"`     // Maximum number of cached items
		TTL           string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		RedisAddress  string `mapstructure:"redis_address"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`
	} `mapstructure:"cache"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Info().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
	logger.Info().Msg("Configuration loaded successfully")
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.address", "localhost")
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("client_timeout", "30s")
	viper.SetDefault("jellyfin.client_name", DefaultClientName)
	viper.SetDefault("jellyfin.client_version", DefaultClientVersion)
	viper.SetDefault("jellyfin.device_name", DefaultClientName)
	viper.SetDefault("playback.max_bitrate", DefaultMaxBitrate)
	viper.SetDefault("playback.native_player", false)
	viper.SetDefault("playback.progress_debounce", DefaultProgressDebounce)
	viper.SetDefault("cache.provider", "memory")
	viper.SetDefault("cache.size", 500)
	viper.SetDefault("cache.ttl", "10m")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Jellyfin.DeviceID == "" {
		// A stable device ID should be configured; a fresh one makes the server
		// see a new device on every start.
		config.Jellyfin.DeviceID = uuid.NewString()
	}
	if config.Playback.MaxBitrate <= 0 {
		// The profile builder does not clamp, so the substitution happens here.
		config.Playback.MaxBitrate = DefaultMaxBitrate
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}
