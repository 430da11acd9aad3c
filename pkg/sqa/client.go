package sqa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/cdkbot/releasemgr/pkg/log"
)

// Timeout for test platform API requests
const requestTimeout = 10 * time.Second

// tokenEnv names the environment variable holding the API token
const tokenEnv = "SQA_TOKEN"

// Config identifies the product and test plans this client drives
type Config struct {
	BaseURL     string
	ProductUUID string
	TestPlanIDs []string
}

// Client talks to the SQA test platform REST API
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a test platform client with a bounded request timeout
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// wire types

type instanceJSON struct {
	UUID              string `json:"uuid"`
	ID                string `json:"id"`
	TestPlan          string `json:"test_plan"`
	Status            string `json:"status"`
	EffectivePriority string `json:"effective_priority"`
	ProductUnderTest  string `json:"product_under_test"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type productVersionJSON struct {
	UUID     string `json:"uuid"`
	Revision string `json:"revision"`
}

type addonJSON struct {
	UUID      string `json:"uuid"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	File      string `json:"file"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type buildJSON struct {
	UUID    string `json:"uuid"`
	AddonID string `json:"addon_id"`
	Status  string `json:"status"`
	Result  string `json:"result"`
}

// FindInstances returns all test plan instances whose product-under-test
// matches the given release fingerprint on a channel and base.
func (c *Client) FindInstances(channel, base, version string) ([]TestPlanInstance, error) {
	query := url.Values{
		"channel":            {channel},
		"base":               {base},
		"product_under_test": {version},
	}
	var raw []instanceJSON
	if err := c.get("/api/v2/testplaninstances/", query, &raw); err != nil {
		return nil, fmt.Errorf("list test plan instances for %s: %w", version, err)
	}

	instances := make([]TestPlanInstance, 0, len(raw))
	for _, item := range raw {
		instance, err := item.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode test plan instance: %w", err)
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// StartReleaseTest creates the product version, uploads the revision
// variables as an addon, and creates one test plan instance per configured
// test plan at the given priority.
func (c *Client) StartReleaseTest(
	channel, base, arch string, revisions map[string]string, version string, priority int,
) error {
	productVersion, err := c.createProductVersion(version)
	if err != nil {
		return err
	}

	variables := map[string]string{
		"base":    base,
		"arch":    arch,
		"channel": channel,
	}
	for key, revision := range revisions {
		variables[key] = revision
	}
	if _, err := c.ensureAddon(version, variables); err != nil {
		return err
	}

	for _, testPlan := range c.cfg.TestPlanIDs {
		payload := map[string]any{
			"test_plan":          testPlan,
			"product_under_test": productVersion,
			"effective_priority": priority,
		}
		var created instanceJSON
		if err := c.post("/api/v2/testplaninstances/", payload, &created); err != nil {
			return fmt.Errorf("create test plan instance for %s: %w", version, err)
		}
		logger := log.WithComponent("sqa")
		logger.Info().
			Str("uuid", created.UUID).
			Str("version", version).
			Int("priority", priority).
			Msg("Started release test")
	}
	return nil
}

// AbortReleaseTest deletes a test plan instance
func (c *Client) AbortReleaseTest(instance uuid.UUID) error {
	if err := c.do(http.MethodDelete, "/api/v2/testplaninstances/"+instance.String()+"/", nil, nil); err != nil {
		return fmt.Errorf("delete test plan instance %s: %w", instance, err)
	}
	return nil
}

// CreateBuild creates one standalone build with the given addon variables
func (c *Client) CreateBuild(name string, variables map[string]string) (Build, error) {
	addon, err := c.ensureAddon(name, variables)
	if err != nil {
		return Build{}, err
	}
	payload := map[string]any{
		"product": c.cfg.ProductUUID,
		"addon":   addon.UUID.String(),
	}
	var created buildJSON
	if err := c.post("/api/v2/builds/", payload, &created); err != nil {
		return Build{}, fmt.Errorf("create build %s: %w", name, err)
	}
	return created.toDomain()
}

// ListBuilds returns builds filtered by platform status (Queued, Running,
// Finished).
func (c *Client) ListBuilds(status string) ([]Build, error) {
	var raw []buildJSON
	if err := c.get("/api/v2/builds/", url.Values{"status": {status}}, &raw); err != nil {
		return nil, fmt.Errorf("list builds with status %s: %w", status, err)
	}
	builds := make([]Build, 0, len(raw))
	for _, item := range raw {
		build, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		builds = append(builds, build)
	}
	return builds, nil
}

func (c *Client) createProductVersion(revision string) (string, error) {
	payload := map[string]any{
		"product":  c.cfg.ProductUUID,
		"revision": revision,
	}
	var created productVersionJSON
	if err := c.post("/api/v2/productversions/", payload, &created); err != nil {
		return "", fmt.Errorf("create product version for %s: %w", revision, err)
	}
	return created.UUID, nil
}

// ensureAddon is a two-step idempotent upsert: look the addon up by name,
// create it when missing. The platform is the source of truth, so a
// concurrent creator winning the race is acceptable (last writer wins).
func (c *Client) ensureAddon(name string, variables map[string]string) (Addon, error) {
	var existing []addonJSON
	if err := c.get("/api/v2/addons/", url.Values{"name": {name}}, &existing); err != nil {
		return Addon{}, fmt.Errorf("look up addon %s: %w", name, err)
	}
	if len(existing) > 0 {
		return existing[0].toDomain()
	}

	payload := map[string]any{
		"name":      name,
		"variables": variables,
	}
	var created addonJSON
	if err := c.post("/api/v2/addons/", payload, &created); err != nil {
		return Addon{}, fmt.Errorf("create addon %s: %w", name, err)
	}
	return created.toDomain()
}

func (c *Client) get(path string, query url.Values, out any) error {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return c.do(http.MethodGet, target, nil, out)
}

func (c *Client) post(path string, payload any, out any) error {
	return c.do(http.MethodPost, path, payload, out)
}

func (c *Client) do(method, path string, payload any, out any) error {
	var body *bytes.Buffer
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(encoded)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := os.Getenv(tokenEnv); token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (j instanceJSON) toDomain() (TestPlanInstance, error) {
	id, err := uuid.Parse(j.UUID)
	if err != nil {
		return TestPlanInstance{}, fmt.Errorf("parse instance uuid %q: %w", j.UUID, err)
	}
	status, err := ParseStatus(j.Status)
	if err != nil {
		return TestPlanInstance{}, err
	}
	var priority float64
	fmt.Sscanf(j.EffectivePriority, "%f", &priority)

	instance := TestPlanInstance{
		UUID:              id,
		ID:                j.ID,
		TestPlan:          j.TestPlan,
		Status:            status,
		EffectivePriority: priority,
		ProductUnderTest:  j.ProductUnderTest,
	}
	if t, err := time.Parse(time.RFC3339, j.CreatedAt); err == nil {
		instance.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, j.UpdatedAt); err == nil {
		instance.UpdatedAt = t
	}
	return instance, nil
}

func (j addonJSON) toDomain() (Addon, error) {
	id, err := uuid.Parse(j.UUID)
	if err != nil {
		return Addon{}, fmt.Errorf("parse addon uuid %q: %w", j.UUID, err)
	}
	addon := Addon{UUID: id, ID: j.ID, Name: j.Name, File: j.File}
	if t, err := time.Parse(time.RFC3339, j.CreatedAt); err == nil {
		addon.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, j.UpdatedAt); err == nil {
		addon.UpdatedAt = t
	}
	return addon, nil
}

func (j buildJSON) toDomain() (Build, error) {
	id, err := uuid.Parse(j.UUID)
	if err != nil {
		return Build{}, fmt.Errorf("parse build uuid %q: %w", j.UUID, err)
	}
	return Build{UUID: id, AddonID: j.AddonID, Status: j.Status, Result: j.Result}, nil
}
