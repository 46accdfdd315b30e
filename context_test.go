package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextGeneratesCallID(t *testing.T) {
	cc := NewContext("user.byId", KindQuery)
	assert.Equal(t, "user.byId", cc.Procedure())
	assert.Equal(t, KindQuery, cc.Kind())
	assert.NotEmpty(t, cc.CallID())

	other := NewContext("user.byId", KindQuery)
	assert.NotEqual(t, cc.CallID(), other.CallID())
}

func TestNewContextOptions(t *testing.T) {
	cc := NewContext("user.create", KindMutation,
		WithCallID("call-1"),
		WithHeaders(map[string]string{"Authorization": "Bearer tok"}),
		WithInput(map[string]any{"name": "alice"}),
		WithSeedFields(Fields{"tenant": "acme"}),
	)

	assert.Equal(t, "call-1", cc.CallID())
	assert.Equal(t, "Bearer tok", cc.Header("authorization"))
	assert.Equal(t, "Bearer tok", cc.Header("AUTHORIZATION"))
	assert.NotNil(t, cc.Input())

	tenant, ok := cc.Value("tenant")
	require.True(t, ok)
	assert.Equal(t, "acme", tenant)
}

func TestContextMergeOverlay(t *testing.T) {
	cc := NewContext("p", KindQuery, WithSeedFields(Fields{"x": 1}))

	merged := cc.Merge(Fields{"y": 2})
	x, ok := merged.Value("x")
	require.True(t, ok)
	assert.Equal(t, 1, x)
	y, ok := merged.Value("y")
	require.True(t, ok)
	assert.Equal(t, 2, y)

	// patch wins on collision
	merged = merged.Merge(Fields{"x": 3})
	x, _ = merged.Value("x")
	assert.Equal(t, 3, x)

	// the receiver is never mutated
	x, _ = cc.Value("x")
	assert.Equal(t, 1, x)
	_, ok = cc.Value("y")
	assert.False(t, ok)
}

func TestContextMergeEmptyPatchReturnsReceiver(t *testing.T) {
	cc := NewContext("p", KindQuery)
	assert.Same(t, cc, cc.Merge(nil))
	assert.Same(t, cc, cc.Merge(Fields{}))
}

func TestContextMergeKeepsIdentity(t *testing.T) {
	cc := NewContext("p", KindSubscription, WithCallID("call-9"))
	merged := cc.Merge(Fields{"k": "v"})
	assert.Equal(t, "p", merged.Procedure())
	assert.Equal(t, KindSubscription, merged.Kind())
	assert.Equal(t, "call-9", merged.CallID())
}

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(KindQuery))
	assert.True(t, ValidKind(KindMutation))
	assert.True(t, ValidKind(KindSubscription))
	assert.False(t, ValidKind(""))
	assert.False(t, ValidKind("stream"))
}
