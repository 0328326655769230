// internal/common/genai/client_test.go
package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-unitmix/internal/common/errors"
	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/common/validation"
)

type reply struct {
	Units []struct {
		UnitID string `json:"unit_id"`
		Beds   int    `json:"beds"`
	} `json:"units"`
}

var replySchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"units"},
	Properties: map[string]validation.Property{
		"units": {
			Type: "array",
			Items: &validation.Property{
				Type:     "object",
				Required: []string{"unit_id", "beds"},
				Properties: map[string]validation.Property{
					"unit_id": {Type: "string"},
					"beds":    {Type: "integer"},
				},
			},
		},
	},
}

func chatServer(t *testing.T, status int, content string, delay time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
			return
		}
		resp := map[string]interface{}{
			"id": "chatcmpl-1",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newClient(t *testing.T, url string, timeout time.Duration) *Client {
	return NewClient(&Config{
		BaseURL:   url + "/v1/",
		APIKey:    "test-key",
		Model:     "test-model",
		Timeout:   timeout,
		MaxTokens: 256,
	}, logger.NewTestLogger(t))
}

func TestClient_CompleteJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"clean json", `{"units":[{"unit_id":"U1","beds":2},{"unit_id":"U2","beds":1}]}`, 2},
		{"trailing comma repaired", `{"units":[{"unit_id":"U1","beds":2},]}`, 1},
		{"code fence stripped", "```json\n{\"units\":[{\"unit_id\":\"U1\",\"beds\":0}]}\n```", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := chatServer(t, http.StatusOK, tt.content, 0)
			defer server.Close()

			var out reply
			err := newClient(t, server.URL, time.Second).CompleteJSON(context.Background(), "system", "user", &replySchema, &out)
			require.NoError(t, err)
			assert.Len(t, out.Units, tt.want)
			assert.Equal(t, "U1", out.Units[0].UnitID)
		})
	}
}

func TestClient_CompleteJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
		delay   time.Duration
		code    errors.ErrorCode
	}{
		{"upstream error", http.StatusBadGateway, "", 0, errors.ErrCodeLLMExtractionFailed},
		{"schema violation", http.StatusOK, `{"units":[{"unit_id":"U1","beds":"two"}]}`, 0, errors.ErrCodeLLMResponseInvalid},
		{"missing units", http.StatusOK, `{"answer":"duplex"}`, 0, errors.ErrCodeLLMResponseInvalid},
		{"timeout", http.StatusOK, `{"units":[]}`, 500 * time.Millisecond, errors.ErrCodeLLMTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := chatServer(t, tt.status, tt.content, tt.delay)
			defer server.Close()

			var out reply
			err := newClient(t, server.URL, 50*time.Millisecond).CompleteJSON(context.Background(), "system", "user", &replySchema, &out)

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestClient_Enabled(t *testing.T) {
	assert.True(t, NewClient(&Config{BaseURL: "http://x", APIKey: "k"}, logger.NewNoOpLogger()).Enabled())
	assert.False(t, NewClient(&Config{BaseURL: "http://x"}, logger.NewNoOpLogger()).Enabled())

	var c *Client
	assert.False(t, c.Enabled())
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
}
