package chain

import (
	"context"
	stderrors "errors"
	"fmt"

	apperrors "github.com/goliatone/go-errors"
)

// Classification codes produced by the engine. Voluntary rejections carry
// whatever code the rejecting unit chose; these cover everything else.
const (
	// ErrCodeHandlerFailure marks errors and panics raised by the terminal
	// handler.
	ErrCodeHandlerFailure = "HANDLER_FAILURE"
	// ErrCodeMiddlewareFailure marks uncaught failures raised by a unit's
	// handler, captured at that frame.
	ErrCodeMiddlewareFailure = "MIDDLEWARE_FAILURE"
	// ErrCodeNextReused marks the fatal programming error of invoking next
	// more than once within one frame, or after the chain settled.
	ErrCodeNextReused = "CHAIN_NEXT_REUSED"
	// ErrCodeUnitNotRegistered marks a resolved chain referencing an
	// identity the registry does not know. Raised at registration time.
	ErrCodeUnitNotRegistered = "CHAIN_UNIT_NOT_REGISTERED"
	// ErrCodeCancelled marks caller initiated cancellation or timeout,
	// distinct from handler failure.
	ErrCodeCancelled = "CHAIN_CONTEXT_CANCELLED"
)

var (
	// ErrNextReused is the base error for double invocation of next.
	ErrNextReused = apperrors.New("next invoked more than once in a single frame", apperrors.CategoryConflict).
			WithTextCode(ErrCodeNextReused)

	// ErrUnitNotRegistered is the base error for unresolved unit identities.
	ErrUnitNotRegistered = apperrors.New("middleware unit not registered", apperrors.CategoryConflict).
				WithTextCode(ErrCodeUnitNotRegistered)
)

// NextReused builds the programming error outcome cause for a unit that
// invoked next more than once.
func NextReused(unit string) *apperrors.Error {
	return ErrNextReused.Clone().WithMetadata(map[string]any{
		"unit": unit,
	})
}

// UnitNotRegistered builds the resolution error for an unknown identity.
func UnitNotRegistered(name string) *apperrors.Error {
	return ErrUnitNotRegistered.Clone().WithMetadata(map[string]any{
		"unit": name,
	})
}

// HandlerFailure wraps an error returned by the terminal handler.
func HandlerFailure(procedure string, err error) *apperrors.Error {
	return apperrors.Wrap(err, apperrors.CategoryHandler, "terminal handler failed").
		WithTextCode(ErrCodeHandlerFailure).
		WithMetadata(map[string]any{
			"procedure": procedure,
		})
}

// HandlerPanic converts a panic raised by the terminal handler into a
// handler failure carrying the recovered value and cleaned stack.
func HandlerPanic(procedure string, recovered any, stack []byte) *apperrors.Error {
	return apperrors.New(fmt.Sprintf("terminal handler panic: %v", recovered), apperrors.CategoryHandler).
		WithTextCode(ErrCodeHandlerFailure).
		WithMetadata(map[string]any{
			"procedure": procedure,
			"panic":     fmt.Sprintf("%v", recovered),
			"stack":     string(stack),
		})
}

// MiddlewareFailure converts a panic raised by a unit's handler into a
// classified failure captured at that frame.
func MiddlewareFailure(unit string, recovered any, stack []byte) *apperrors.Error {
	return apperrors.New(fmt.Sprintf("middleware unit panic: %v", recovered), apperrors.CategoryHandler).
		WithTextCode(ErrCodeMiddlewareFailure).
		WithMetadata(map[string]any{
			"unit":  unit,
			"panic": fmt.Sprintf("%v", recovered),
			"stack": string(stack),
		})
}

// Cancelled classifies caller initiated cancellation or deadline expiry.
func Cancelled(err error) *apperrors.Error {
	return apperrors.Wrap(err, apperrors.CategoryExternal, "context canceled or deadline exceeded").
		WithTextCode(ErrCodeCancelled)
}

// IsCancellation reports whether err stems from context cancellation.
func IsCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
