package studydrive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studysnatcher/pkg/errors"
)

func TestResolveDownloadURL(t *testing.T) {
	t.Run("converted format resolves", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			assert.Equal(t, "true", r.URL.Query().Get("converted_file"))
			assert.Equal(t, DownloadToken(10), r.URL.Query().Get("download-token"))
			assert.Equal(t, "true", r.URL.Query().Get("preview"))
			w.Header().Set("Location", "https://cdn.example.org/file.pdf")
			w.WriteHeader(http.StatusFound)
		}))
		defer server.Close()

		client := newTestClient(t, server)
		location, err := client.ResolveDownloadURL(context.Background(), 10, true)
		require.NoError(t, err)

		assert.Equal(t, "https://cdn.example.org/file.pdf", location)
		assert.Equal(t, 1, requests)
	})

	t.Run("falls back to original format once", func(t *testing.T) {
		var seen []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			converted := r.URL.Query().Get("converted_file")
			seen = append(seen, converted)
			if converted == "true" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.Header().Set("Location", "https://cdn.example.org/file.pptx")
			w.WriteHeader(http.StatusFound)
		}))
		defer server.Close()

		client := newTestClient(t, server)
		location, err := client.ResolveDownloadURL(context.Background(), 10, true)
		require.NoError(t, err)

		assert.Equal(t, "https://cdn.example.org/file.pptx", location)
		assert.Equal(t, []string{"true", "false"}, seen)
	})

	t.Run("both formats failing is unresolvable", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(t, server)
		_, err := client.ResolveDownloadURL(context.Background(), 10, true)
		require.Error(t, err)

		var apiErr *errors.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errors.ErrorTypeUnresolvable, apiErr.Type)
		assert.False(t, apiErr.IsFatal())

		// Exactly one fallback attempt, no further retries
		assert.Equal(t, 2, requests)
	})

	t.Run("unconverted request fails without fallback", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			assert.Equal(t, "false", r.URL.Query().Get("converted_file"))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(t, server)
		_, err := client.ResolveDownloadURL(context.Background(), 10, false)
		require.Error(t, err)

		var apiErr *errors.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errors.ErrorTypeUnresolvable, apiErr.Type)
		assert.Equal(t, 1, requests)
	})

	t.Run("does not follow the redirect", func(t *testing.T) {
		targetHits := 0
		mux := http.NewServeMux()
		mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
			targetHits++
		})
		var server *httptest.Server
		mux.HandleFunc("/legacy-api/v1/documents/10/download", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Location", server.URL+"/target")
			w.WriteHeader(http.StatusFound)
		})
		server = httptest.NewServer(mux)
		defer server.Close()

		client := newTestClient(t, server)
		location, err := client.ResolveDownloadURL(context.Background(), 10, true)
		require.NoError(t, err)

		assert.Equal(t, server.URL+"/target", location)
		assert.Equal(t, 0, targetHits, "resolver must read the Location header, not follow it")
	})
}
