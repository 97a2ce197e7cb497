package network

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tda-observer/src/helpers"
	"tda-observer/src/logger"
	"tda-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func networkConfig() *models.MConfig {
	return &models.MConfig{
		Network: models.MNetworkConfig{
			RequestTimeout:     5,
			MaxRetries:         0,
			ConcurrentRequests: 1,
		},
	}
}

// -----------------------------------------------------------------------------

func TestGetReturnsBodyAndQueryParams(t *testing.T) {
	var gotQuery string
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	nm := NewNetworkManager(networkConfig(), logger.NewLogger("ERROR", "test"))
	body, err := nm.Get(srv.URL, map[string]string{"interval": "1d"})
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, "interval=1d", gotQuery)
	assert.NotEmpty(t, gotUA, "every request carries a User-Agent")
}

// -----------------------------------------------------------------------------

func TestGetExhaustedRetriesIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	nm := NewNetworkManager(networkConfig(), logger.NewLogger("ERROR", "test"))
	_, err := nm.Get(srv.URL, nil)
	require.Error(t, err)

	var netErr *helpers.NetworkError
	assert.True(t, errors.As(err, &netErr))
}

// -----------------------------------------------------------------------------

func TestGetBlockedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	nm := NewNetworkManager(networkConfig(), logger.NewLogger("ERROR", "test"))
	_, err := nm.Get(srv.URL, nil)

	var netErr *helpers.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Contains(t, err.Error(), "429")
}
