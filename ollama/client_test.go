package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:11434", ResolveBaseURL(""))
	assert.Equal(t, "http://localhost:11434", ResolveBaseURL("  "))
	assert.Equal(t, "http://box:11434", ResolveBaseURL("http://box:11434/"))
	assert.Equal(t, "http://localhost:11434/api/tags", TagsURL(""))
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("localhost", "")
	assert.Error(t, err)

	c, err := NewClient("", "")
	require.NoError(t, err)
	assert.Equal(t, "llama3.1:latest", c.GetModel())
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestGenerateSendsOptions(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.1","message":{"role":"assistant","content":"dump analysed"},"done":true}`))
	}))
	defer server.Close()

	c, err := NewClient(server.URL, "llama3.1")
	require.NoError(t, err)

	text, err := c.Generate(context.Background(), "hello", Options{Temperature: 0.2, MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, "dump analysed", text)

	assert.Equal(t, false, body["stream"])
	options, ok := body["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.2, options["temperature"])
	assert.Equal(t, float64(64), options["num_predict"])
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:latest"},{"name":"qwen2.5-coder:7b"}]}`))
	}))
	defer server.Close()

	c, err := NewClient(server.URL, "")
	require.NoError(t, err)

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.1:latest", "qwen2.5-coder:7b"}, models)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))

	c, err := NewClient(server.URL, "")
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))

	server.Close()
	assert.Error(t, c.Ping(context.Background()))
}
