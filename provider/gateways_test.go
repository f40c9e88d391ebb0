package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"abapai/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// --- Google AI (Gemini) ---

func geminiKey(r *http.Request) string {
	if k := r.URL.Query().Get("key"); k != "" {
		return k
	}
	return r.Header.Get("X-Goog-Api-Key")
}

func TestGeminiComplete(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = geminiKey(r)
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"hi "},{"text":"there"}]}}]}`)
	}))
	defer server.Close()

	gw, err := NewGeminiGateway(model.NewClientConfig(model.ProviderGoogleAI, "g-key", "", "", model.UnsetTemperature(), 0), WithEndpoint(server.URL))
	require.NoError(t, err)

	text, err := gw.Complete(context.Background(), "explain")
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
	assert.Equal(t, "g-key", gotKey)
}

func TestGeminiCompleteClampsMaxTokens(t *testing.T) {
	var body struct {
		GenerationConfig struct {
			MaxOutputTokens int64 `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`)
	}))
	defer server.Close()

	cfg := model.NewClientConfig(model.ProviderGoogleAI, "g-key", "", "", model.UnsetTemperature(), 0)
	cfg.MaxTokens = int(int64(model.MaxTokensLimit) + 1)
	gw, err := NewGeminiGateway(cfg, WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = gw.Complete(context.Background(), "explain")
	require.NoError(t, err)
	assert.Equal(t, int64(model.MaxTokensLimit), body.GenerationConfig.MaxOutputTokens)
}

func TestGeminiCompleteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}))
	defer server.Close()

	gw, err := NewGeminiGateway(model.NewClientConfig(model.ProviderGoogleAI, "bad-key", "", "", model.UnsetTemperature(), 0), WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = gw.Complete(context.Background(), "explain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Google AI (Gemini)")
	assert.Contains(t, err.Error(), "403")
}

func TestGeminiListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"models":[{"name":"models/gemini-1.5-flash"},{"name":"models/gemini-1.5-pro"}]}`)
	}))
	defer server.Close()

	gw, err := NewGeminiGateway(model.NewClientConfig(model.ProviderGoogleAI, "g-key", "", "", model.UnsetTemperature(), 0), WithEndpoint(server.URL))
	require.NoError(t, err)

	models, err := gw.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-1.5-flash", "gemini-1.5-pro"}, models)
}

func TestGeminiRequiresKey(t *testing.T) {
	gw, err := NewGeminiGateway(model.NewClientConfig(model.ProviderGoogleAI, "", "", "", model.UnsetTemperature(), 0))
	require.NoError(t, err)

	_, err = gw.Complete(context.Background(), "explain")
	assert.ErrorIs(t, err, model.ErrMissingAPIKey)

	_, err = gw.ListModels(context.Background())
	assert.ErrorIs(t, err, model.ErrMissingAPIKey)
}

func TestNormalizeGeminiModelName(t *testing.T) {
	assert.Equal(t, "gemini-1.5-flash", NormalizeGeminiModelName("models/gemini-1.5-flash"))
	assert.Equal(t, "gemini-pro", NormalizeGeminiModelName("gemini-pro"))
	assert.Equal(t, "", NormalizeGeminiModelName("models/"))
}

// --- OpenAI ---

func TestOpenAIComplete(t *testing.T) {
	var body map[string]any
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"division by zero"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	cfg := model.NewClientConfig(model.ProviderOpenAI, "sk-test", "gpt-4o", "", model.NewTemperature(0.3), 512)
	gw, err := NewOpenAIGateway(cfg, WithEndpoint(server.URL))
	require.NoError(t, err)

	text, err := gw.Complete(context.Background(), "explain")
	require.NoError(t, err)
	assert.Equal(t, "division by zero", text)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o", body["model"])
	assert.InDelta(t, 0.3, body["temperature"], 1e-9)
	assert.EqualValues(t, 512, body["max_completion_tokens"])
}

func TestOpenAIReasoningModelOmitsTemperature(t *testing.T) {
	tests := []struct {
		model           string
		wantTemperature bool
	}{
		{"o1", false},
		{"o1-preview", false},
		{"O1-mini", false},
		{"gpt-4o", true},
		{"gpt-4o-mini", true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			var body map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&body)
				writeJSON(w, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`)
			}))
			defer server.Close()

			cfg := model.NewClientConfig(model.ProviderOpenAI, "sk-test", tt.model, "", model.UnsetTemperature(), 0)
			gw, err := NewOpenAIGateway(cfg, WithEndpoint(server.URL))
			require.NoError(t, err)

			_, err = gw.Complete(context.Background(), "explain")
			require.NoError(t, err)

			_, has := body["temperature"]
			assert.Equal(t, tt.wantTemperature, has)
		})
	}
}

func TestOpenAICompleteUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer server.Close()

	gw, err := NewOpenAIGateway(model.NewClientConfig(model.ProviderOpenAI, "sk-bad", "", "", model.UnsetTemperature(), 0), WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = gw.Complete(context.Background(), "explain")
	require.Error(t, err)

	var pe *model.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.True(t, strings.HasPrefix(err.Error(), "[OpenAI] Completion failed: HTTP 401"))
}

func TestOpenAIListModelsKeepsChatModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"object":"list","data":[
			{"id":"gpt-4o","object":"model","created":1,"owned_by":"openai"},
			{"id":"dall-e-3","object":"model","created":1,"owned_by":"openai"},
			{"id":"gpt-4o-mini","object":"model","created":1,"owned_by":"openai"},
			{"id":"whisper-1","object":"model","created":1,"owned_by":"openai"}]}`)
	}))
	defer server.Close()

	gw, err := NewOpenAIGateway(model.NewClientConfig(model.ProviderOpenAI, "sk-test", "", "", model.UnsetTemperature(), 0), WithEndpoint(server.URL))
	require.NoError(t, err)

	models, err := gw.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, models)
}

func TestFilterChatModels(t *testing.T) {
	assert.Equal(t, []string{"gpt-4", "gpt-3.5-turbo"}, FilterChatModels([]string{"gpt-4", "text-embedding-3", "gpt-3.5-turbo", "o1"}))
	assert.Empty(t, FilterChatModels(nil))
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, IsReasoningModel("o1"))
	assert.True(t, IsReasoningModel(" o1-preview "))
	assert.False(t, IsReasoningModel("gpt-4o"))
	assert.False(t, IsReasoningModel("o10"))
}

// --- Anthropic ---

func TestAnthropicComplete(t *testing.T) {
	var apiKey, version string
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-Api-Key")
		version = r.Header.Get("Anthropic-Version")
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5-20250929","content":[{"type":"text","text":"root cause: "},{"type":"text","text":"lv_b is zero"}],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`)
	}))
	defer server.Close()

	cfg := model.NewClientConfig(model.ProviderAnthropic, "ant-key", "", "", model.UnsetTemperature(), 0)
	gw, err := NewAnthropicGateway(cfg, WithEndpoint(server.URL))
	require.NoError(t, err)

	text, err := gw.Complete(context.Background(), "explain")
	require.NoError(t, err)
	assert.Equal(t, "root cause: lv_b is zero", text)
	assert.Equal(t, "ant-key", apiKey)
	assert.Equal(t, "2023-06-01", version)
	assert.EqualValues(t, model.DefaultMaxTokens, body["max_tokens"])
	assert.InDelta(t, model.DefaultTemperature, body["temperature"], 1e-9)
}

func TestAnthropicListModelsWithoutKeySendsNothing(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	}))
	defer server.Close()

	gw, err := NewAnthropicGateway(model.NewClientConfig(model.ProviderAnthropic, "", "", "", model.UnsetTemperature(), 0), WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = gw.ListModels(context.Background())
	require.Error(t, err)
	assert.Equal(t, "[Anthropic (Claude)] API key is required to fetch models", err.Error())
	assert.Equal(t, int32(0), hits.Load())
}

func TestAnthropicListModels(t *testing.T) {
	var version string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version = r.Header.Get("Anthropic-Version")
		writeJSON(w, http.StatusOK, `{"data":[
			{"id":"claude-sonnet-4-5-20250929","type":"model","display_name":"Claude Sonnet 4.5","created_at":"2025-09-29T00:00:00Z"},
			{"id":"claude-3-5-haiku-20241022","type":"model","display_name":"Claude Haiku 3.5","created_at":"2024-10-22T00:00:00Z"}],
			"has_more":false,"first_id":"claude-sonnet-4-5-20250929","last_id":"claude-3-5-haiku-20241022"}`)
	}))
	defer server.Close()

	gw, err := NewAnthropicGateway(model.NewClientConfig(model.ProviderAnthropic, "ant-key", "", "", model.UnsetTemperature(), 0), WithEndpoint(server.URL))
	require.NoError(t, err)

	models, err := gw.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"claude-sonnet-4-5-20250929", "claude-3-5-haiku-20241022"}, models)
	assert.Equal(t, "2023-06-01", version)
}

func TestAnthropicListModelsFollowsPages(t *testing.T) {
	var afterIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after_id")
		afterIDs = append(afterIDs, after)
		if after == "" {
			writeJSON(w, http.StatusOK, `{"data":[{"id":"claude-a","type":"model","display_name":"A","created_at":"2025-01-01T00:00:00Z"}],
				"has_more":true,"first_id":"claude-a","last_id":"claude-a"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":[{"id":"claude-b","type":"model","display_name":"B","created_at":"2024-01-01T00:00:00Z"}],
			"has_more":false,"first_id":"claude-b","last_id":"claude-b"}`)
	}))
	defer server.Close()

	gw, err := NewAnthropicGateway(model.NewClientConfig(model.ProviderAnthropic, "ant-key", "", "", model.UnsetTemperature(), 0), WithEndpoint(server.URL))
	require.NoError(t, err)

	models, err := gw.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"claude-a", "claude-b"}, models)
	assert.Equal(t, []string{"", "claude-a"}, afterIDs)
}

// --- Ollama ---

func TestOllamaDefaultTagsURL(t *testing.T) {
	gw, err := NewOllamaGateway(model.NewClientConfig(model.ProviderOllama, "", "", "", model.UnsetTemperature(), 0))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/api/tags", gw.TagsURL())

	gw, err = NewOllamaGateway(model.NewClientConfig(model.ProviderOllama, "", "", "http://gpu-box:11434/", model.UnsetTemperature(), 0))
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434/api/tags", gw.TagsURL())
}

func TestOllamaComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, `{"model":"llama3.1:latest","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":"local analysis"},"done":true}`)
	}))
	defer server.Close()

	gw, err := NewOllamaGateway(model.NewClientConfig(model.ProviderOllama, "", "", server.URL, model.UnsetTemperature(), 0))
	require.NoError(t, err)

	text, err := gw.Complete(context.Background(), "explain")
	require.NoError(t, err)
	assert.Equal(t, "local analysis", text)
}

func TestOllamaUnreachableAddsHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	gw, err := NewOllamaGateway(model.NewClientConfig(model.ProviderOllama, "", "", addr, model.UnsetTemperature(), 0))
	require.NoError(t, err)

	_, err = gw.ListModels(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "[Ollama (Local)] Failed to fetch models"))
	assert.True(t, strings.HasSuffix(err.Error(), " - Is Ollama running?"))

	_, err = gw.Complete(context.Background(), "explain")
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(err.Error(), "Is Ollama running?"))
}

func TestOllamaWithEndpointOverridesBaseURL(t *testing.T) {
	gw, err := NewOllamaGateway(model.NewClientConfig(model.ProviderOllama, "", "", "http://gpu-box:11434", model.UnsetTemperature(), 0), WithEndpoint("http://127.0.0.1:9999"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", gw.BaseURL())
}

func TestOllamaPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"models":[]}`)
	}))

	gw, err := NewOllamaGateway(model.NewClientConfig(model.ProviderOllama, "", "", server.URL, model.UnsetTemperature(), 0))
	require.NoError(t, err)
	assert.NoError(t, gw.Ping(context.Background()))

	server.Close()
	err = gw.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Server unreachable at "+server.URL)
	assert.True(t, strings.HasSuffix(err.Error(), ollamaHint))
}
