package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// PoolSpec is one entry of a pools file.
type PoolSpec struct {
	Name string   `toml:"name" yaml:"name"`
	Keys []string `toml:"keys" yaml:"keys"`
}

// PoolFile describes a split mode and its ordered pools.
//
//	mode = "label"
//
//	[[pools]]
//	name = "Warp"
//	keys = ["Warp Records"]
type PoolFile struct {
	Mode  string     `toml:"mode" yaml:"mode"`
	Pools []PoolSpec `toml:"pools" yaml:"pools"`
}

// LoadPools parses a pools file. Files ending in .yaml or .yml are read as YAML, everything else as TOML.
func LoadPools(path string) (*PoolFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pools file: %w", err)
	}

	var pf PoolFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &pf)
	default:
		err = toml.Unmarshal(data, &pf)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse pools file %s: %v", ErrInvalidInput, path, err)
	}

	if len(pf.Pools) == 0 {
		return nil, fmt.Errorf("%w: pools file %s declares no pools", ErrInvalidInput, path)
	}
	for i, p := range pf.Pools {
		if len(p.Keys) == 0 {
			return nil, fmt.Errorf("%w: pool %d in %s has no keys", ErrInvalidInput, i+1, path)
		}
	}

	return &pf, nil
}

// ParsePoolFlag splits a comma-separated --pool value into trimmed, non-empty keys.
//
// A leading "name=" assigns the pool name, e.g. "warp=Warp Records,Warp". Everything before the first
// "=" is taken as the name unless it holds a comma, so a key containing "=" needs a name or an empty
// one: "=Rock=Roll Records". Keys containing commas can only be given in a pools file.
func ParsePoolFlag(value string) (PoolSpec, error) {
	var spec PoolSpec
	if name, rest, ok := strings.Cut(value, "="); ok && !strings.Contains(name, ",") {
		spec.Name = strings.TrimSpace(name)
		value = rest
	}

	for _, key := range strings.Split(value, ",") {
		if key = strings.TrimSpace(key); key != "" {
			spec.Keys = append(spec.Keys, key)
		}
	}

	if len(spec.Keys) == 0 {
		return spec, fmt.Errorf("%w: pool %q has no keys", ErrInvalidFlag, value)
	}
	return spec, nil
}
