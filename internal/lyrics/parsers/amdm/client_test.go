package amdm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://123.amdm.ru/akkordi/a/1/b/": "https://amdm.ru/akkordi/a/1/b/",
		"https://m.amdm.ru/akkordi/a/1/b/":   "https://amdm.ru/akkordi/a/1/b/",
		"https://amdm.ru/akkordi/a/1/b/":     "https://amdm.ru/akkordi/a/1/b/",
		"http://127.0.0.1:8080/song":         "http://127.0.0.1:8080/song",
	}
	for input, want := range tests {
		assert.Equal(t, want, canonicalURL(input), input)
	}
}

func TestClient_FetchPage_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(WithRetries(3, time.Millisecond))
	page, err := client.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", page)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_FetchPage_Permanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/big" {
			_, _ = w.Write([]byte(strings.Repeat("a", 64)))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(WithRetries(3, time.Millisecond), WithMaxBytes(16))

	_, err := client.FetchPage(context.Background(), server.URL+"/missing")
	require.ErrorContains(t, err, "404")
	assert.Equal(t, int32(1), calls.Load())

	_, err = client.FetchPage(context.Background(), server.URL+"/big")
	require.ErrorIs(t, err, errPageTooLarge)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_FetchPage_GivesUp(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(WithRetries(1, time.Millisecond)).FetchPage(context.Background(), server.URL)
	require.ErrorContains(t, err, "502")
}

func TestParseSection(t *testing.T) {
	t.Parallel()

	tests := map[string]SectionType{
		"intro":     SectionIntro,
		"Interlude": SectionSolo,
		"проигрыш":  SectionSolo,
		"Припев":    SectionChorus,
		" coda ":    SectionOutro,
	}
	for input, want := range tests {
		got, err := ParseSection(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseSection("kazoo")
	assert.Error(t, err)
}
