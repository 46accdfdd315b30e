package server

import (
	"time"

	"github.com/goliatone/go-chain"
	"github.com/goliatone/go-chain/resolver"
)

// ProcedureSpec declares one procedure: its path, call kind, and the
// middleware attachments it runs. Router names the router level list;
// Use lists the procedure level units. Both are identities resolved
// against the unit registry at registration time.
type ProcedureSpec struct {
	Path        string         `json:"path"`
	Kind        chain.CallKind `json:"kind"`
	Router      string         `json:"router,omitempty"`
	Use         []string       `json:"use,omitempty"`
	Timeout     time.Duration  `json:"timeout,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// ProcedureMeta is exported metadata for one registered procedure,
// including the resolved chain and each unit's declared context extension
// shape for codegen/doc discovery.
type ProcedureMeta struct {
	Path        string              `json:"path"`
	Kind        chain.CallKind      `json:"kind"`
	Router      string              `json:"router,omitempty"`
	Units       []resolver.UnitInfo `json:"units,omitempty"`
	Timeout     time.Duration       `json:"timeout,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	Description string              `json:"description,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
}

// Request carries transport decoded call data into the engine. Headers seed
// the per call Context; Input is handed to the terminal handler untouched.
type Request struct {
	Headers map[string]string
	Input   any
}

// Manifest is the full metadata export consumed by tooling such as
// chain-ctxgen.
type Manifest struct {
	Procedures []ProcedureMeta     `json:"procedures"`
	Units      []resolver.UnitInfo `json:"units"`
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
