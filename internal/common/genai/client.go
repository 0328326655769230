// internal/common/genai/client.go
package genai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"listing-unitmix/internal/common/errors"
	httpclient "listing-unitmix/internal/common/http"
	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/common/validation"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	config *Config
	http   *httpclient.Client
	logger logger.Logger
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		http: httpclient.NewClient(config.Timeout).
			WithHeader("Authorization", "Bearer "+config.APIKey),
		logger: log.With(map[string]interface{}{
			"component": "genai-client",
		}),
	}
}

// Enabled reports whether an endpoint and key are configured.
func (c *Client) Enabled() bool {
	return c != nil && c.config.BaseURL != "" && c.config.APIKey != ""
}

// ChatCompletion performs one chat completion request.
func (c *Client) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if req.Model == "" {
		req.Model = c.config.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.config.MaxTokens
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	body, err := c.http.PostJSON(ctx, url, req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.NewLLMTimeoutError(c.config.Timeout)
		}
		return nil, errors.NewLLMExtractionFailedError(err)
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.NewLLMExtractionFailedError(fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if len(result.Choices) == 0 {
		return nil, errors.NewLLMResponseInvalidError("response has no choices")
	}
	return &result, nil
}

// CompleteJSON asks for a JSON object reply and decodes it into out. Malformed
// JSON is repaired once; when schema is set the reply must satisfy it.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, schema *validation.JSONSchema, out interface{}) error {
	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    c.config.Temperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return err
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return errors.NewLLMResponseInvalidError(fmt.Sprintf("unmarshal error: %v, repair error: %v", err, repairErr))
		}
		c.logger.Debug("repaired model JSON", map[string]interface{}{
			"originalLength": len(content),
			"repairedLength": len(repaired),
		})
		content = repaired
		if err := json.Unmarshal([]byte(content), &doc); err != nil {
			return errors.NewLLMResponseInvalidError(fmt.Sprintf("repaired JSON still invalid: %v", err))
		}
	}

	if schema != nil {
		if result := validation.ValidateInput(doc, *schema); !result.Valid {
			return errors.NewLLMResponseInvalidError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return errors.NewLLMResponseInvalidError(err.Error())
	}
	return nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}
