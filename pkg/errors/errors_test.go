package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	base := Remote(errors.New("connection refused"), "get project failed")
	wrapped := fmt.Errorf("refresh: %w", base)

	require.True(t, IsCode(wrapped, CodeUnavailable))
	require.False(t, IsCode(wrapped, CodeNotFound))
	require.Equal(t, CodeUnavailable, CodeOf(wrapped))
	require.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	require.Equal(t, "invalid: select at least one recommendation", Validation("select at least one recommendation").Error())
	require.Equal(t, "unavailable: retry failed: boom", Remote(errors.New("boom"), "retry failed").Error())

	var nilErr *AppError
	require.Equal(t, "<nil>", nilErr.Error())
}

func TestWithMeta(t *testing.T) {
	e := NotFound("resource not found").WithMeta("resource_id", "r-1")
	require.Equal(t, "r-1", e.Meta["resource_id"])
}
