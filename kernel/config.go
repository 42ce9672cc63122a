package kernel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lifo-sh/lifo-sh/vfs"
	"github.com/lifo-sh/lifo-sh/vfs/store"
)

// Config customizes a Boot() beyond spec.md §6.4's fixed default
// environment: seeded env overrides, extra mounts, the content-store
// budget, and an optional hostname override for tests and embedders
// that don't want os.Hostname's real value.
type Config struct {
	// EnvOverrides are applied after the default environment (§6.4), so
	// they win over any default of the same name.
	EnvOverrides map[string]string

	// Mounts are applied after the bootstrap layout (§6.5) is created,
	// so a mount may shadow a path the layout itself created.
	Mounts map[string]vfs.MountProvider

	// StoreBudget overrides store.DefaultBudget; 0 means unbounded,
	// negative means "use the default".
	StoreBudget int64

	// Hostname overrides os.Hostname() for HOSTNAME and /etc/hostname.
	Hostname string
}

func (c Config) storeBudget() int64 {
	if c.StoreBudget < 0 {
		return store.DefaultBudget
	}
	return c.StoreBudget
}

// manifest is the on-disk shape of a boot manifest: everything in
// Config except Mounts, which are a host-side wiring concern and have
// no meaningful YAML representation.
type manifest struct {
	Env         map[string]string `yaml:"env"`
	StoreBudget *int64            `yaml:"store_budget"`
	Hostname    string            `yaml:"hostname"`
}

// LoadConfig parses a YAML boot manifest (env overrides, store budget,
// hostname) into a Config. Mount declarations are not expressible in
// the manifest; a host adds them to the returned Config.Mounts itself
// before calling Boot.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("kernel: reading boot manifest %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML boot manifest already read into memory.
func ParseConfig(data []byte) (Config, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("kernel: parsing boot manifest: %w", err)
	}
	cfg := Config{
		EnvOverrides: m.Env,
		StoreBudget:  -1,
		Hostname:     m.Hostname,
	}
	if m.StoreBudget != nil {
		cfg.StoreBudget = *m.StoreBudget
	}
	return cfg, nil
}
