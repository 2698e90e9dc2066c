// Copyright 2025 DataPilot
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the default Anthropic API endpoint
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAPIVersion is the Anthropic API version
	DefaultAPIVersion = "2023-06-01"

	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 120 * time.Second

	// DefaultMaxTokens is the default max tokens for completions
	DefaultMaxTokens = 2048

	// DefaultModel is the default Claude model
	DefaultModel = "claude-3-5-sonnet-20241022"
)

// HTTPClient is an interface for HTTP client operations (enables testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AnthropicConfig contains configuration for the Anthropic generator
type AnthropicConfig struct {
	APIKey     string        // Required: Anthropic API key
	BaseURL    string        // Optional: API base URL
	APIVersion string        // Optional: API version
	Model      string        // Optional: model override
	Timeout    time.Duration // Optional: HTTP timeout
}

// AnthropicGenerator implements Generator on top of the Anthropic
// Messages API
type AnthropicGenerator struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	client     HTTPClient
}

// NewAnthropicGenerator creates a generator backed by Claude
func NewAnthropicGenerator(cfg AnthropicConfig) (*AnthropicGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &AnthropicGenerator{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		apiVersion: cfg.APIVersion,
		model:      cfg.Model,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// SetHTTPClient overrides the HTTP client (used by tests)
func (g *AnthropicGenerator) SetHTTPClient(client HTTPClient) {
	g.client = client
}

// Name returns the generator name
func (g *AnthropicGenerator) Name() string {
	return "anthropic"
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete performs one non-streaming Messages API call
func (g *AnthropicGenerator) complete(ctx context.Context, system, prompt string) (string, error) {
	apiReq := anthropicRequest{
		Model:     g.model,
		MaxTokens: DefaultMaxTokens,
		System:    system,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", g.apiVersion)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if apiResp.Error != nil {
			return "", fmt.Errorf("anthropic API error (%s): %s", apiResp.Error.Type, apiResp.Error.Message)
		}
		return "", fmt.Errorf("anthropic API returned status %d", resp.StatusCode)
	}

	var text string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("anthropic API returned empty completion")
	}
	return text, nil
}

// GenerateSQL turns the instruction into a single SQL statement
func (g *AnthropicGenerator) GenerateSQL(ctx context.Context, req Request) (string, error) {
	text, err := g.complete(ctx, sqlSystemPrompt, sqlUserPrompt(req))
	if err != nil {
		return "", err
	}
	return stripCodeFences(text), nil
}

// Reply answers a conversational question about the schema
func (g *AnthropicGenerator) Reply(ctx context.Context, req Request) (string, error) {
	return g.complete(ctx, chatSystemPrompt, chatUserPrompt(req))
}

// GenerateDocs produces markdown documentation for the schema
func (g *AnthropicGenerator) GenerateDocs(ctx context.Context, req Request) (string, error) {
	return g.complete(ctx, docsSystemPrompt, docsUserPrompt(req))
}

// GenerateGraph proposes a chart spec with its follow-up query
func (g *AnthropicGenerator) GenerateGraph(ctx context.Context, req Request) (*GraphSpec, error) {
	text, err := g.complete(ctx, graphSystemPrompt, graphUserPrompt(req))
	if err != nil {
		return nil, err
	}

	var spec GraphSpec
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &spec); err != nil {
		return nil, fmt.Errorf("model returned invalid graph spec: %w", err)
	}
	if spec.Query == "" {
		return nil, fmt.Errorf("model returned graph spec without a query")
	}
	return &spec, nil
}
