package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestAnthropicProvider_SendsSystemSeparately(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"smart",` +
			`"content":[{"type":"text","text":"Laporan"}],"stop_reason":"end_turn",` +
			`"usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("key", Models{Preview: "cheap", Full: "smart"}, option.WithBaseURL(srv.URL))
	text, err := p.Complete(context.Background(), Request{System: "sys", Prompt: "halo", Tier: TierFull, MaxTokens: 4000})
	require.NoError(t, err)

	assert.Equal(t, "Laporan", text)
	assert.Equal(t, "smart", body["model"])
	system, ok := body["system"].([]any)
	require.True(t, ok, "system field present")
	require.Len(t, system, 1)
	assert.Equal(t, "sys", system[0].(map[string]any)["text"])

	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	assert.NotContains(t, mustJSON(t, messages), "sys")
}

func TestAnthropicProvider_NoSDKRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("key", Models{Preview: "cheap", Full: "smart"}, option.WithBaseURL(srv.URL))
	_, err := p.Complete(context.Background(), Request{Prompt: "halo", Tier: TierPreview, MaxTokens: 500})
	require.Error(t, err)

	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(1), hits.Load())
}

func TestGeminiProvider_SendsSystemInstruction(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Ringkasan"}]}}]}`))
	}))
	defer srv.Close()

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	})
	require.NoError(t, err)
	p := &GeminiProvider{client: client, models: Models{Preview: "cheap", Full: "smart"}}

	text, err := p.Complete(context.Background(), Request{System: "sys", Prompt: "halo", Tier: TierPreview, MaxTokens: 500})
	require.NoError(t, err)

	assert.Equal(t, "Ringkasan", text)
	require.Contains(t, body, "systemInstruction")
	assert.Contains(t, mustJSON(t, body["systemInstruction"]), "sys")
	assert.NotContains(t, mustJSON(t, body["contents"]), "sys")
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
