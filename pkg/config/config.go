package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the release pipeline configuration. Defaults cover the
// Canonical Kubernetes snap and the k8s-operator charm bundle; a YAML file
// overrides them and CLI flags override the file.
type Config struct {
	// Snap promotion
	SnapName string   `yaml:"snap-name"`
	SnapRepo string   `yaml:"snap-repo"`
	Series   []string `yaml:"series"`
	Flavors  []string `yaml:"flavors"`

	DwellDays    DwellDays `yaml:"dwell-days"`
	IgnoreTracks []string  `yaml:"ignore-tracks"`
	IgnoreArches []string  `yaml:"ignore-arches"`

	// Charm release
	BundleName string   `yaml:"bundle-name"`
	Charms     []string `yaml:"charms"`

	// External systems
	SQA       SQAConfig `yaml:"sqa"`
	Launchpad LPConfig  `yaml:"launchpad"`
}

// DwellDays is the number of days a revision stays at each risk level
// before becoming eligible for promotion.
type DwellDays struct {
	Edge      int `yaml:"edge"`
	Beta      int `yaml:"beta"`
	Candidate int `yaml:"candidate"`
}

// SQAConfig identifies the product and test plans on the test platform
type SQAConfig struct {
	BaseURL     string   `yaml:"base-url"`
	ProductUUID string   `yaml:"product-uuid"`
	TestPlanIDs []string `yaml:"test-plan-ids"`
}

// LPConfig holds launchpad project settings
type LPConfig struct {
	Owner      string `yaml:"owner"`
	Project    string `yaml:"project"`
	Repository string `yaml:"repository"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		SnapName: "k8s",
		SnapRepo: "https://github.com/canonical/k8s-snap.git/",
		Series:   []string{"20.04", "22.04", "24.04"},
		Flavors:  []string{"classic", "moonray", "strict"},
		DwellDays: DwellDays{
			Edge:      1,
			Beta:      3,
			Candidate: 5,
		},
		BundleName: "k8s-operator",
		Charms:     []string{"k8s", "k8s-worker"},
		SQA: SQAConfig{
			BaseURL:     "https://weebl.internal",
			ProductUUID: "3a8046a8-ef27-4ec7-a8a3-af6f470b96d7",
			TestPlanIDs: []string{
				"a60b64e7-11c1-46ee-8926-217214bcdde5",
				"ba910113-f1dc-42c2-8e8a-3f5446b6dc09",
				"78865cd1-0f85-4d2c-8198-a383aecc4bf7",
			},
		},
		Launchpad: LPConfig{
			Owner:      "containers",
			Project:    "k8s",
			Repository: "k8s-snap",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.SnapName == "" {
		return fmt.Errorf("snap-name must not be empty")
	}
	if c.DwellDays.Edge < 0 || c.DwellDays.Beta < 0 || c.DwellDays.Candidate < 0 {
		return fmt.Errorf("dwell-days must not be negative")
	}
	if len(c.Charms) == 0 {
		return fmt.Errorf("charms must not be empty")
	}
	return nil
}
