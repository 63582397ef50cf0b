// Package config aggregates the component configuration.
// Order: defaults -> config.yml -> config.local.yml -> env -> Validate.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tmforum-oda/reference-example-components/internal/downstream"
	"github.com/tmforum-oda/reference-example-components/internal/logging"
	"github.com/tmforum-oda/reference-example-components/internal/server"
	storage "github.com/tmforum-oda/reference-example-components/internal/storage/config"
)

// Config holds the application configuration.
type Config struct {
	Component    ComponentConfig    `yaml:"component"`
	Server       server.Config      `yaml:"server"`
	Storage      storage.Config     `yaml:"storage"`
	Downstream   downstream.Config  `yaml:"downstream"`
	Notification NotificationConfig `yaml:"notification"`
	Logging      logging.Config     `yaml:"logging"`
}

// ComponentConfig identifies this deployment and the resource types it
// serves.
type ComponentConfig struct {
	// Name is the deployed component instance name, typically
	// <release>-<component>, and is what downstream discovery matches
	// against.
	Name string `yaml:"name"`

	// ResourceTypes lists the TMF resource types exposed by the API.
	ResourceTypes []string `yaml:"resource_types"`
}

// NotificationConfig controls delivery filtering and the optional event
// bus mirror.
type NotificationConfig struct {
	// Filter selects the subscriber filter mode: "none" delivers every
	// event to every subscriber in scope (the default); "cel" evaluates
	// the subscriber's registered query as a CEL expression. In CEL mode
	// registrations with non-CEL queries are rejected.
	Filter string `yaml:"filter"`

	NATS NATSConfig `yaml:"nats"`
}

// FilterCEL reports whether CEL filtering was opted into.
func (n *NotificationConfig) FilterCEL() bool {
	return n.Filter == "cel"
}

func (n *NotificationConfig) ApplyDefaults() {
	if n.Filter == "" {
		n.Filter = "none"
	}
	n.NATS.ApplyDefaults()
}

func (n *NotificationConfig) Validate() error {
	switch n.Filter {
	case "none", "cel":
	default:
		return fmt.Errorf(`notification.filter must be "none" or "cel", got %q`, n.Filter)
	}
	return nil
}

type NATSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

func DefaultComponentConfig() ComponentConfig {
	return ComponentConfig{
		Name: "productcatalogmanagement",
		ResourceTypes: []string{
			"Catalog",
			"Category",
			"ProductOffering",
			"ProductOfferingPrice",
			"ProductSpecification",
			"PermissionSpecificationSet",
		},
	}
}

func (c *ComponentConfig) ApplyDefaults() {
	def := DefaultComponentConfig()
	if c.Name == "" {
		c.Name = def.Name
	}
	if len(c.ResourceTypes) == 0 {
		c.ResourceTypes = def.ResourceTypes
	}
}

func (c *ComponentConfig) ApplyEnvOverrides() {
	if v := os.Getenv("COMPONENT_NAME"); v != "" {
		c.Name = v
	} else if v := os.Getenv("RELEASE_NAME"); v != "" && !strings.HasPrefix(c.Name, v+"-") {
		c.Name = v + "-" + c.Name
	}
}

func (c *ComponentConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("component name is required")
	}
	if len(c.ResourceTypes) == 0 {
		return fmt.Errorf("at least one resource type is required")
	}
	return nil
}

func (n *NATSConfig) ApplyDefaults() {
	if n.URL == "" {
		n.URL = "nats://localhost:4222"
	}
	if n.SubjectPrefix == "" {
		n.SubjectPrefix = "tmf"
	}
}

func (n *NATSConfig) ApplyEnvOverrides() {
	if v := os.Getenv("NATS_URL"); v != "" {
		n.URL = v
		n.Enabled = true
	}
}

// Default returns the full default configuration.
func Default() *Config {
	cfg := &Config{
		Component: DefaultComponentConfig(),
		Server:    server.DefaultConfig(),
		Storage:   storage.DefaultConfig(),
		Logging:   logging.DefaultConfig(),
	}
	cfg.Notification.ApplyDefaults()
	return cfg
}

// Load reads the configuration from configDir and applies the
// environment on top.
func Load(configDir string) (*Config, error) {
	cfg := Default()

	if err := loadFile(filepath.Join(configDir, "config.yml"), cfg); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(configDir, "config.local.yml"), cfg); err != nil {
		return nil, err
	}

	cfg.Component.ApplyDefaults()
	cfg.Component.ApplyEnvOverrides()

	cfg.Server.ApplyDefaults()
	cfg.Server.ApplyEnvOverrides()

	cfg.Storage.ApplyDefaults()
	cfg.Storage.ApplyEnvOverrides()

	cfg.Logging.ApplyDefaults()
	cfg.Logging.ApplyEnvOverrides()
	if cfg.Logging.File.Name == "component" {
		cfg.Logging.File.Name = cfg.Component.Name
	}

	cfg.Notification.ApplyDefaults()
	cfg.Notification.NATS.ApplyEnvOverrides()

	if v := os.Getenv("CANVAS_INFO_HOST_PORT"); v != "" {
		cfg.Downstream.InventoryHostPort = v
	}
	if cfg.Downstream.ComponentName == "" {
		cfg.Downstream.ComponentName = cfg.Component.Name
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Component.Validate(); err != nil {
		return fmt.Errorf("component: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Notification.Validate(); err != nil {
		return fmt.Errorf("notification: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// DownstreamEnabled reports whether aggregation was configured.
func (c *Config) DownstreamEnabled() bool {
	return c.Downstream.InventoryHostPort != ""
}

func loadFile(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return nil
}
