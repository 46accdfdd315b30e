package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-chain"
	"github.com/goliatone/go-chain/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlChainSet = `
routers:
  - name: public
    use: [logging]
  - name: admin
    use: [logging, auth]
procedures:
  - path: doc.byId
    kind: query
    router: public
    use: [auth]
    summary: Fetch a document
  - path: doc.purge
    kind: mutation
    router: admin
    timeout: 250ms
    tags: [admin]
`

const tomlChainSet = `
[[routers]]
name = "public"
use = ["logging"]

[[procedures]]
path = "doc.byId"
kind = "query"
router = "public"
`

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(yamlChainSet))
	require.NoError(t, err)
	require.Len(t, cfg.Routers, 2)
	assert.Equal(t, []string{"logging"}, cfg.Routers[0].Use)
	require.Len(t, cfg.Procedures, 2)
	assert.Equal(t, "250ms", cfg.Procedures[1].Timeout)
}

func TestParseFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlChainSet), 0o644))

	cfg, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.Routers, 1)
	assert.Equal(t, "public", cfg.Routers[0].Name)
	require.Len(t, cfg.Procedures, 1)
	assert.Equal(t, "doc.byId", cfg.Procedures[0].Path)
}

func TestParseFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlChainSet), 0o644))

	cfg, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Procedures, 2)
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		cfg  ChainSet
	}{
		{"unnamed router", ChainSet{Routers: []RouterDef{{}}}},
		{"duplicate router", ChainSet{Routers: []RouterDef{{Name: "a"}, {Name: "a"}}}},
		{"missing path", ChainSet{Procedures: []ProcedureDef{{}}}},
		{"duplicate path", ChainSet{Procedures: []ProcedureDef{{Path: "p"}, {Path: "p"}}}},
		{"bad kind", ChainSet{Procedures: []ProcedureDef{{Path: "p", Kind: "stream"}}}},
		{"unknown router ref", ChainSet{Procedures: []ProcedureDef{{Path: "p", Router: "ghost"}}}},
		{"bad timeout", ChainSet{Procedures: []ProcedureDef{{Path: "p", Timeout: "soon"}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.cfg.Validate())
		})
	}
}

func TestBindRegistersAndInvokes(t *testing.T) {
	cfg, err := Parse([]byte(yamlChainSet))
	require.NoError(t, err)

	var order []string
	record := func(name string) chain.Unit {
		return chain.NewUnit(name, func(ctx context.Context, cc *chain.Context, next chain.Next) chain.Outcome {
			order = append(order, name)
			return next(ctx, nil)
		})
	}

	s := server.New()
	require.NoError(t, s.RegisterUnits(record("logging"), record("auth")))

	terminals := map[string]chain.Terminal{
		"doc.byId": func(ctx context.Context, cc *chain.Context) (any, error) {
			return map[string]any{"id": "d1"}, nil
		},
		"doc.purge": func(ctx context.Context, cc *chain.Context) (any, error) {
			return nil, nil
		},
	}
	require.NoError(t, Bind(cfg, s, terminals))

	out := s.Invoke(context.Background(), "doc.byId", server.Request{})
	require.True(t, out.Ok())
	assert.Equal(t, []string{"logging", "auth"}, order)

	meta, ok := s.Procedure("doc.purge")
	require.True(t, ok)
	assert.Equal(t, chain.KindMutation, meta.Kind)
	assert.Equal(t, "250ms", meta.Timeout.String())
}

func TestBindMissingTerminal(t *testing.T) {
	cfg := ChainSet{Procedures: []ProcedureDef{{Path: "p"}}}
	err := Bind(cfg, server.New(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no terminal handler bound")
}
