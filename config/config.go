package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the Rollcall server and its dependencies.
type Config struct {
	// Listen is the address the Rollcall server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// Database holds the document database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Session holds the cookie session configuration.
	Session *SessionConfig `yaml:"session" mapstructure:"session"`
	// Uploads holds the avatar upload configuration.
	Uploads *UploadsConfig `yaml:"uploads" mapstructure:"uploads"`
	// Gravatar holds the configuration for Gravatar fallback avatars.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// DatabaseConfig holds the MongoDB connection configuration.
type DatabaseConfig struct {
	// URL is the MongoDB connection string.
	URL string `yaml:"url" mapstructure:"url"`
	// Name is the database name.
	Name string `yaml:"name" mapstructure:"name"`
}

// SessionConfig holds the cookie session configuration.
type SessionConfig struct {
	// Secret is the key used to authenticate session cookies.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// MaxAge is the maximum age of a session in seconds.
	MaxAge int `yaml:"max_age" mapstructure:"max_age"`
	// Secure marks the session cookie as https-only.
	Secure bool `yaml:"secure" mapstructure:"secure"`
}

// UploadsConfig holds the avatar upload configuration.
type UploadsConfig struct {
	// Dir is the directory where uploaded avatars are stored.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// MaxWidth is the maximum width of a stored avatar in pixels.
	MaxWidth int `yaml:"max_width" mapstructure:"max_width"`
	// MaxHeight is the maximum height of a stored avatar in pixels.
	MaxHeight int `yaml:"max_height" mapstructure:"max_height"`
	// Quality is the JPEG quality (1-100) used when re-encoding avatars.
	Quality int `yaml:"quality" mapstructure:"quality"`
}

// GravatarConfig holds the configuration for Gravatar fallback avatars.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar fallbacks are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// Environment variables with the ROLLCALL_ prefix override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("ROLLCALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rollcall")
		v.AddConfigPath("/etc/rollcall")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with ROLLCALL_ prefix will override config file values")
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3000")
	v.SetDefault("log_level", "info")

	v.SetDefault("database.url", "mongodb://localhost:27017")
	v.SetDefault("database.name", "rollcall")

	// registered so the ROLLCALL_SESSION_SECRET env override is picked up
	v.SetDefault("session.secret", "")
	v.SetDefault("session.max_age", 172800) // 48 hours
	v.SetDefault("session.secure", false)

	v.SetDefault("uploads.dir", "./data/uploads")
	v.SetDefault("uploads.max_width", 512)
	v.SetDefault("uploads.max_height", 512)
	v.SetDefault("uploads.quality", 85)

	v.SetDefault("gravatar.enabled", true)
	v.SetDefault("gravatar.default_image", "identicon")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing rollcall config")
	}

	if c.Database == nil || c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Session == nil || c.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("session max age must be positive")
	}

	if c.Uploads != nil && c.Uploads.Quality != 0 {
		if c.Uploads.Quality < 1 || c.Uploads.Quality > 100 {
			return fmt.Errorf("uploads quality must be between 1 and 100")
		}
	}

	return nil
}
