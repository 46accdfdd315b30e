// Package config loads declarative chain sets: router and procedure
// middleware attachments expressed as plain ordered lists of unit
// identities, bound to a server at registration time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goliatone/go-chain"
	"github.com/goliatone/go-chain/server"
	"gopkg.in/yaml.v3"
)

// RouterDef declares a router level middleware list.
type RouterDef struct {
	Name string   `yaml:"name" toml:"name" json:"name"`
	Use  []string `yaml:"use" toml:"use" json:"use"`
}

// ProcedureDef declares one procedure and its middleware attachments.
// Timeout accepts Go duration syntax ("250ms", "2s").
type ProcedureDef struct {
	Path        string   `yaml:"path" toml:"path" json:"path"`
	Kind        string   `yaml:"kind" toml:"kind" json:"kind"`
	Router      string   `yaml:"router" toml:"router" json:"router"`
	Use         []string `yaml:"use" toml:"use" json:"use"`
	Timeout     string   `yaml:"timeout" toml:"timeout" json:"timeout"`
	Summary     string   `yaml:"summary" toml:"summary" json:"summary"`
	Description string   `yaml:"description" toml:"description" json:"description"`
	Tags        []string `yaml:"tags" toml:"tags" json:"tags"`
}

// ChainSet is the root of a declarative chain configuration document.
type ChainSet struct {
	Routers    []RouterDef    `yaml:"routers" toml:"routers" json:"routers"`
	Procedures []ProcedureDef `yaml:"procedures" toml:"procedures" json:"procedures"`
}

// Parse decodes a YAML (or JSON, which YAML subsumes) chain set.
func Parse(data []byte) (ChainSet, error) {
	var cfg ChainSet
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ParseFile loads a chain set from path, decoding TOML for .toml files and
// YAML otherwise.
func ParseFile(path string) (ChainSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChainSet{}, fmt.Errorf("read chain set: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var cfg ChainSet
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode chain set: %w", err)
		}
		return cfg, cfg.Validate()
	}
	return Parse(data)
}

// Validate checks structural consistency: unique names, known router
// references, valid call kinds, and parseable timeouts.
func (c ChainSet) Validate() error {
	routers := make(map[string]struct{}, len(c.Routers))
	for _, r := range c.Routers {
		if r.Name == "" {
			return fmt.Errorf("router name required")
		}
		if _, dup := routers[r.Name]; dup {
			return fmt.Errorf("duplicate router %q", r.Name)
		}
		routers[r.Name] = struct{}{}
	}

	paths := make(map[string]struct{}, len(c.Procedures))
	for _, p := range c.Procedures {
		if p.Path == "" {
			return fmt.Errorf("procedure path required")
		}
		if _, dup := paths[p.Path]; dup {
			return fmt.Errorf("duplicate procedure %q", p.Path)
		}
		paths[p.Path] = struct{}{}

		if p.Kind != "" && !chain.ValidKind(chain.CallKind(p.Kind)) {
			return fmt.Errorf("procedure %s: invalid kind %q", p.Path, p.Kind)
		}
		if p.Router != "" {
			if _, ok := routers[p.Router]; !ok {
				return fmt.Errorf("procedure %s: unknown router %q", p.Path, p.Router)
			}
		}
		if p.Timeout != "" {
			if _, err := time.ParseDuration(p.Timeout); err != nil {
				return fmt.Errorf("procedure %s: invalid timeout %q", p.Path, p.Timeout)
			}
		}
	}
	return nil
}

// Bind registers the chain set's routers and procedures on the server,
// pairing each procedure with its terminal handler from terminals by path.
func Bind(cfg ChainSet, s *server.Server, terminals map[string]chain.Terminal) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for _, r := range cfg.Routers {
		if err := s.RegisterRouter(r.Name, r.Use...); err != nil {
			return fmt.Errorf("register router %s: %w", r.Name, err)
		}
	}

	for _, p := range cfg.Procedures {
		terminal, ok := terminals[p.Path]
		if !ok {
			return fmt.Errorf("procedure %s: no terminal handler bound", p.Path)
		}

		spec := server.ProcedureSpec{
			Path:        p.Path,
			Kind:        chain.CallKind(p.Kind),
			Router:      p.Router,
			Use:         p.Use,
			Summary:     p.Summary,
			Description: p.Description,
			Tags:        p.Tags,
		}
		if p.Timeout != "" {
			// validated above
			spec.Timeout, _ = time.ParseDuration(p.Timeout)
		}

		if err := s.RegisterProcedure(spec, terminal); err != nil {
			return fmt.Errorf("register procedure %s: %w", p.Path, err)
		}
	}
	return nil
}
