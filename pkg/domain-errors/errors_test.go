package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUpstream, "discord api unavailable")

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, New(CodeUpstream, "discord api unavailable"))
	assert.True(t, HasCode(err, CodeUpstream))
	assert.False(t, HasCode(err, CodeNotFound))
}

func TestHasCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("login flow: %w", New(CodeForbidden, "staff role required"))
	assert.True(t, HasCode(err, CodeForbidden))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, ToHTTPStatus(CodeUnauthorized))
	assert.Equal(t, http.StatusForbidden, ToHTTPStatus(CodeForbidden))
	assert.Equal(t, http.StatusBadGateway, ToHTTPStatus(CodeUpstream))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(Code("bogus")))
}
