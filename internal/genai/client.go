// Package genai is a client for the Gemini generateContent REST endpoint.
//
// Documents are always forwarded as plain text parts. The only binary
// payload this client ever sends is an inline image on the vision path;
// the endpoint rejects binary wrappers for anything else.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docassist/internal/config"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Generator produces model responses from a prepared context string.
type Generator interface {
	// GenerateText forwards a single context string to the endpoint.
	GenerateText(ctx context.Context, contextString string) (string, error)
	// GenerateVision sends a text prompt together with one inline image.
	GenerateVision(ctx context.Context, promptText string, image []byte, mimeType string) (string, error)
}

// Client calls the Gemini generateContent API over HTTP.
type Client struct {
	apiKey      string
	model       string
	visionModel string
	baseURL     string
	httpClient  *http.Client
}

// NewClient builds a Client from configuration. The HTTP transport is
// wrapped with otelhttp so outbound calls are traced.
func NewClient(cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = model
	}
	return &Client{
		apiKey:      cfg.APIKey,
		model:       model,
		visionModel: visionModel,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

// part carries either text or one inline image, never both.
type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateText forwards the context string as a single text part.
func (c *Client) GenerateText(ctx context.Context, contextString string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: contextString}}}},
	}
	return c.generate(ctx, c.model, req)
}

// GenerateVision sends a text prompt plus one inline image part.
func (c *Client) GenerateVision(ctx context.Context, promptText string, image []byte, mimeType string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: promptText},
			{InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(image),
			}},
		}}},
	}
	return c.generate(ctx, c.visionModel, req)
}

func (c *Client) generate(ctx context.Context, model string, reqBody generateRequest) (string, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generate endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("generate: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("generate: status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generate: empty response")
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
