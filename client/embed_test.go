package client

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets(t *testing.T) {
	data, err := fs.ReadFile(Assets(), "folio.js")
	require.NoError(t, err)
	assert.Contains(t, string(data), "phx_join")
}

func TestHandler(t *testing.T) {
	h := http.StripPrefix("/_live/", Handler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_live/folio.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
}
