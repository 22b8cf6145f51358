package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from YAML files and environment variables.
// Environment variables take precedence over YAML values.
// Env prefix: DOCBROKER_ (e.g., DOCBROKER_SERVER_PORT).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("app")
	v.SetConfigType("yaml")

	v.AddConfigPath("./settings")
	v.AddConfigPath("../settings")
	v.AddConfigPath("../../settings")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DOCBROKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is acceptable; env vars and defaults carry us.
	}

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.presign_ttl", "1h")

	v.SetDefault("registry.file_path", "data/document-registry.json")

	v.SetDefault("session.mappings_file_path", "data/employee-connection-mappings.json")
	v.SetDefault("session.soft_deleted_connections_path", "data/soft-deleted-connections.json")

	v.SetDefault("cloud_agent.did_publication_poll", "2s")
	v.SetDefault("cloud_agent.did_publication_budget", "60s")
	v.SetDefault("cloud_agent.tenant.timeout", "15s")
	v.SetDefault("cloud_agent.enterprise.timeout", "15s")

	v.SetDefault("ephemeral.default_ttl", "1h")
	v.SetDefault("ephemeral.pickup_base_url", "http://localhost:8080/api/v1")

	v.SetDefault("janitor.enabled", true)
	v.SetDefault("janitor.interval", "60s")

	v.SetDefault("environment", "development")
}

// MustLoad loads configuration and panics on error.
// Use this only in main() or initialization code.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}
