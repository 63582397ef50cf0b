// Package downstream aggregates results from dependent product catalog
// APIs discovered through the canvas service inventory.
package downstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// DependencyName is the API dependency declared in the component
// specification; only inventory services tagged with it are aggregated.
const DependencyName = "downstreamproductcatalog"

const inventoryPath = "/tmf-api/serviceInventoryManagement/v5/service"

// Config parameterizes discovery.
type Config struct {
	// InventoryHostPort is the canvas info service address. Empty
	// disables downstream aggregation entirely.
	InventoryHostPort string `yaml:"inventory_host_port"`
	// ComponentName is this component's name; used to select only our
	// own declared dependencies from the inventory.
	ComponentName string `yaml:"component_name"`
	// DiscoveryTimeout bounds the inventory call.
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout"`
}

// Client fetches and concatenates resources from downstream APIs. The
// endpoint list is discovered once, on first use, and cached.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger

	once      sync.Once
	endpoints []string
}

// NewClient creates a downstream aggregation client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.DiscoveryTimeout <= 0 {
		cfg.DiscoveryTimeout = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger.With("component", "downstream"),
	}
}

// inventoryService is the subset of a service inventory record we read.
type inventoryService struct {
	ServiceCharacteristic []struct {
		Name  string      `json:"name"`
		Value interface{} `json:"value"`
	} `json:"serviceCharacteristic"`
}

// Endpoints returns the discovered downstream API roots, loading them on
// first call. Discovery failures yield an empty list; aggregation is an
// optional dependency and never fails the caller.
func (c *Client) Endpoints(ctx context.Context) []string {
	c.once.Do(func() {
		if c.cfg.InventoryHostPort == "" {
			c.logger.Info("downstream APIs not loaded, inventory address not configured")
			return
		}
		c.endpoints = c.discover(ctx)
		c.logger.Info("downstream APIs loaded", "count", len(c.endpoints))
	})
	return c.endpoints
}

func (c *Client) discover(ctx context.Context) []string {
	url := "http://" + c.cfg.InventoryHostPort + inventoryPath

	ctx, cancel := context.WithTimeout(ctx, c.cfg.DiscoveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("failed to build inventory request", "error", err)
		return nil
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("service inventory unreachable", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	var services []inventoryService
	if err := json.NewDecoder(resp.Body).Decode(&services); err != nil {
		c.logger.Warn("invalid service inventory response", "error", err)
		return nil
	}

	var endpoints []string
	for _, svc := range services {
		if !svc.hasCharacteristic("dependencyName", DependencyName) {
			continue
		}
		if !svc.hasCharacteristic("componentName", c.cfg.ComponentName) {
			continue
		}
		for _, ch := range svc.ServiceCharacteristic {
			if ch.Name != "url" {
				continue
			}
			if url, ok := ch.Value.(string); ok && url != "" {
				if !strings.HasSuffix(url, "/") {
					url += "/"
				}
				endpoints = append(endpoints, url)
			}
		}
	}
	return endpoints
}

func (s inventoryService) hasCharacteristic(name, value string) bool {
	for _, ch := range s.ServiceCharacteristic {
		if ch.Name == name && ch.Value == value {
			return true
		}
	}
	return false
}

// List queries every downstream API for the resource type and
// concatenates the results. Per-endpoint failures are logged and
// skipped.
func (c *Client) List(ctx context.Context, resourceType string) []model.Resource {
	var out []model.Resource
	for _, endpoint := range c.Endpoints(ctx) {
		url := endpoint + model.LowerCamel(resourceType)
		docs, err := c.fetchList(ctx, url)
		if err != nil {
			c.logger.Warn("downstream list failed", "url", url, "error", err)
			continue
		}
		out = append(out, docs...)
	}
	return out
}

// Retrieve asks each downstream API for the resource until one returns
// it. Returns nil when no downstream API has it.
func (c *Client) Retrieve(ctx context.Context, resourceType, id string) model.Resource {
	for _, endpoint := range c.Endpoints(ctx) {
		url := endpoint + model.LowerCamel(resourceType) + "/" + id
		doc, err := c.fetchOne(ctx, url)
		if err != nil {
			c.logger.Warn("downstream retrieve failed", "url", url, "error", err)
			continue
		}
		if doc != nil {
			return doc
		}
	}
	return nil
}

func (c *Client) fetchList(ctx context.Context, url string) ([]model.Resource, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var docs []model.Resource
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) fetchOne(ctx context.Context, url string) (model.Resource, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	var doc model.Resource
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		resp.Body.Close()
		return nil, fmt.Errorf("downstream API returned %d", resp.StatusCode)
	}
	return resp, nil
}
