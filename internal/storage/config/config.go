// Package config holds document store configuration.
package config

import (
	"fmt"
	"os"
)

// Config selects and parameterizes the storage backend.
type Config struct {
	// Backend is "mongo" or "memory".
	Backend string      `yaml:"backend"`
	Mongo   MongoConfig `yaml:"mongo"`
}

// MongoConfig holds MongoDB connection parameters. Host/Port/Database are
// kept separate because the deployment supplies them as discrete
// environment variables.
type MongoConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
}

// URI assembles the connection string.
func (c MongoConfig) URI() string {
	return fmt.Sprintf("mongodb://%s:%s/%s", c.Host, c.Port, c.Database)
}

// DefaultConfig returns default storage configuration.
func DefaultConfig() Config {
	return Config{
		Backend: "mongo",
		Mongo: MongoConfig{
			Host:     "localhost",
			Port:     "27017",
			Database: "tmf",
		},
	}
}

// ApplyDefaults fills in missing values with defaults.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.Mongo.Host == "" {
		c.Mongo.Host = def.Mongo.Host
	}
	if c.Mongo.Port == "" {
		c.Mongo.Port = def.Mongo.Port
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = def.Mongo.Database
	}
}

// ApplyEnvOverrides applies deployment environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MONGODB_HOST"); v != "" {
		c.Mongo.Host = v
	}
	if v := os.Getenv("MONGODB_PORT"); v != "" {
		c.Mongo.Port = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		c.Mongo.Database = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Backend {
	case "mongo", "memory":
	default:
		return fmt.Errorf("storage.backend must be \"mongo\" or \"memory\", got %q", c.Backend)
	}
	if c.Backend == "mongo" && c.Mongo.Database == "" {
		return fmt.Errorf("storage.mongo.database is required")
	}
	return nil
}
