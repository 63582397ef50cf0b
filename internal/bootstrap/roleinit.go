// Package bootstrap seeds the initial permission role after deployment.
// The canvas expects every component to expose an Admin role it can bind
// operators to, so the initializer keeps retrying until the component
// API accepts the seed document.
package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// Config drives the role initializer.
type Config struct {
	// TargetURL is the API root the seed is posted under, e.g.
	// http://localhost:8080/r1-catalog/rolesAndPermissionsManagement/v5
	TargetURL string `yaml:"target_url"`

	// UsePermissionSpec selects the seed document flavor: a
	// PermissionSpecificationSet when true, a PartyRole otherwise.
	UsePermissionSpec bool `yaml:"use_permission_spec"`

	// RoleName is the seeded role, defaulting to Admin.
	RoleName string `yaml:"role_name"`

	RetryDelay time.Duration `yaml:"retry_delay"`
}

func DefaultConfig() Config {
	return Config{
		UsePermissionSpec: true,
		RoleName:          "Admin",
		RetryDelay:        5 * time.Second,
	}
}

func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.RoleName == "" {
		c.RoleName = def.RoleName
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = def.RetryDelay
	}
}

func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ROLE_TARGET_URL"); v != "" {
		c.TargetURL = v
	}
	if v := os.Getenv("USE_PERMISSION_SPEC"); v != "" {
		c.UsePermissionSpec = v == "true"
	}
	if v := os.Getenv("BOOTSTRAP_ROLE"); v != "" {
		c.RoleName = v
	}
}

func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("target url is required")
	}
	return nil
}

// Initializer posts the seed role until the API accepts it.
type Initializer struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewInitializer(cfg Config, logger *slog.Logger) *Initializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Initializer{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With("component", "bootstrap"),
	}
}

// WithHTTPClient replaces the HTTP client, for tests.
func (i *Initializer) WithHTTPClient(client *http.Client) *Initializer {
	i.client = client
	return i
}

// Run retries the seed until it succeeds or ctx is canceled.
func (i *Initializer) Run(ctx context.Context) error {
	for {
		err := i.attempt(ctx)
		if err == nil {
			i.logger.Info("initial role created", "role", i.cfg.RoleName)
			return nil
		}
		i.logger.Warn("role initialization failed, retrying",
			"error", err,
			"delay", i.cfg.RetryDelay,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(i.cfg.RetryDelay):
		}
	}
}

func (i *Initializer) attempt(ctx context.Context) error {
	resource, payload := i.seed()

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := i.cfg.TargetURL + "/" + model.LowerCamel(resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return nil
}

// seed builds the initial role document.
func (i *Initializer) seed() (string, model.Resource) {
	if i.cfg.UsePermissionSpec {
		return "PermissionSpecificationSet", model.Resource{
			"name":        i.cfg.RoleName,
			"description": i.cfg.RoleName + " permission specification set",
			"@type":       "PermissionSpecificationSet",
			"permissionSpecification": []interface{}{
				map[string]interface{}{
					"name":  i.cfg.RoleName,
					"@type": "PermissionSpecification",
				},
			},
		}
	}
	return "PartyRole", model.Resource{
		"name":  i.cfg.RoleName,
		"@type": "PartyRole",
	}
}
