// This file defines the configuration structure for the application.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	JWT struct {
		Secret   string `mapstructure:"secret"`
		TTLHours int    `mapstructure:"ttl_hours"`
	} `mapstructure:"jwt"`
	Admin struct {
		// Shared passphrase for the legacy admin console login. This is a
		// deliberately preserved secondary gate alongside per-user role
		// flags and is not suitable for production deployments.
		Passphrase string `mapstructure:"passphrase"`
	} `mapstructure:"admin"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")

	// Environment variable overrides with a "BLACKHOLE_" prefix.
	// e.g. BLACKHOLE_DATABASE_PATH overrides the `database.path` key.
	viper.SetEnvPrefix("BLACKHOLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./blackhole.db")
	viper.SetDefault("jwt.secret", "change-me")
	viper.SetDefault("jwt.ttl_hours", 72)
	viper.SetDefault("admin.passphrase", "@Mustafa7")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
