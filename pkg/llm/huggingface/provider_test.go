package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant-be/pkg/llm"
)

func TestChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" greeting "}}]}`))
	}))
	defer srv.Close()

	p := NewProvider("secret", srv.URL+"/", "tiny-model", time.Second)
	out, err := p.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hello"}},
		llm.WithMaxTokens(8),
	)
	require.NoError(t, err)
	assert.Equal(t, " greeting ", out)
	assert.Equal(t, "tiny-model", got.Model)
	assert.Equal(t, 8, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http status", http.StatusServiceUnavailable, `loading`},
		{"api error", http.StatusOK, `{"error":{"message":"quota"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewProvider("", srv.URL, "m", time.Second).Chat(context.Background(), nil)
			assert.Error(t, err)
		})
	}
}
