package callback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

func newTestServer() (*Server, *httptest.Server) {
	s := NewServer("", "")
	return s, httptest.NewServer(s.routes())
}

func TestServerRoutes(t *testing.T) {
	t.Run("root page signals certificate acceptance", func(t *testing.T) {
		s, ts := newTestServer()
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NoError(t, s.WaitForCertAccept(context.Background()))
	})

	t.Run("root signal fires only once", func(t *testing.T) {
		s, ts := newTestServer()
		defer ts.Close()

		for i := 0; i < 3; i++ {
			resp, err := http.Get(ts.URL + "/")
			require.NoError(t, err)
			resp.Body.Close()
		}

		assert.NoError(t, s.WaitForCertAccept(context.Background()))
	})

	t.Run("callback with code delivers it to the waiter", func(t *testing.T) {
		s, ts := newTestServer()
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/callback?code=abc123")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		code, err := s.WaitForCode(context.Background(), time.Second)
		require.NoError(t, err)
		assert.Equal(t, "abc123", code)
	})

	t.Run("callback without code is a 400 and does not signal", func(t *testing.T) {
		s, ts := newTestServer()
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/callback")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		_, err = s.WaitForCode(context.Background(), 50*time.Millisecond)
		assert.ErrorIs(t, err, domain.ErrAuthTimeout)
	})

	t.Run("second code replaces the first", func(t *testing.T) {
		s, ts := newTestServer()
		defer ts.Close()

		for _, code := range []string{"first", "second"} {
			resp, err := http.Get(ts.URL + "/callback?code=" + code)
			require.NoError(t, err)
			resp.Body.Close()
		}

		code, err := s.WaitForCode(context.Background(), time.Second)
		require.NoError(t, err)
		assert.Equal(t, "second", code)
	})

	t.Run("unknown path is a 404", func(t *testing.T) {
		_, ts := newTestServer()
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/favicon.ico")
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServerWaits(t *testing.T) {
	t.Run("WaitForCode times out", func(t *testing.T) {
		s := NewServer("", "")

		start := time.Now()
		_, err := s.WaitForCode(context.Background(), 20*time.Millisecond)

		assert.ErrorIs(t, err, domain.ErrAuthTimeout)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("WaitForCertAccept honours context cancellation", func(t *testing.T) {
		s := NewServer("", "")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, s.WaitForCertAccept(ctx), context.Canceled)
	})

	t.Run("Stop before Start is a no-op", func(t *testing.T) {
		s := NewServer("", "")

		assert.NoError(t, s.Stop())
	})
}

func TestServerURLs(t *testing.T) {
	s := NewServer("cert.pem", "key.pem")

	assert.Equal(t, "https://localhost:5000/callback", s.RedirectURI())
	assert.Equal(t, "https://localhost:5000/", s.RootURL())
}
