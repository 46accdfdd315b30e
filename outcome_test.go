package chain

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeOK(t *testing.T) {
	out := OK(map[string]any{"id": "d1"})
	assert.True(t, out.Ok())
	assert.NotNil(t, out.Value())
	assert.NoError(t, out.Err())
	assert.Empty(t, out.Classification())
}

func TestOutcomeReject(t *testing.T) {
	out := Reject("UNAUTHORIZED", "missing bearer token")
	assert.False(t, out.Ok())
	assert.Nil(t, out.Value())
	require.Error(t, out.Err())
	assert.Equal(t, "UNAUTHORIZED", out.Classification())
}

func TestOutcomeFailNilErrIsSuccess(t *testing.T) {
	out := Fail(nil)
	assert.True(t, out.Ok())
}

func TestOutcomeWithMeta(t *testing.T) {
	meta := Meta{
		Procedure: "user.byId",
		Kind:      KindQuery,
		CallID:    "call-1",
		Duration:  25 * time.Millisecond,
	}
	out := OK("v").WithMeta(meta)
	assert.Equal(t, meta, out.Meta())
}

func TestClassificationUnwrapsWrappedErrors(t *testing.T) {
	cause := HandlerFailure("user.byId", fmt.Errorf("boom"))
	wrapped := fmt.Errorf("observed downstream: %w", cause)
	assert.Equal(t, ErrCodeHandlerFailure, Classification(wrapped))
}

func TestClassificationPlainError(t *testing.T) {
	assert.Empty(t, Classification(stderrors.New("plain")))
	assert.Empty(t, Classification(nil))
}

func TestCancelledClassification(t *testing.T) {
	err := Cancelled(fmt.Errorf("context deadline exceeded"))
	assert.Equal(t, ErrCodeCancelled, Classification(err))
}

func TestNextReusedCarriesUnit(t *testing.T) {
	err := NextReused("auth")
	assert.Equal(t, ErrCodeNextReused, Classification(err))
}
