// Package gemini provides a minimal client for the Gemini
// generateContent API, used to produce images from text prompts.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"toolbelt-mcp/internal/tool"
)

// Client is a minimal HTTP client for Gemini image generation.
type Client struct {
	BaseURL string
	Model   string
	HTTP    *http.Client
}

// New returns a new client. If httpClient is nil, a default with a 60s
// timeout is used; generation responses are slow and large.
func New(baseURL, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Model: model, HTTP: httpClient}
}

// GeneratedImage is the decoded payload extracted from a generation
// response.
type GeneratedImage struct {
	Data     []byte
	MimeType string
}

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

// GenerateImage sends the prompt to the generateContent endpoint and
// extracts the embedded base64 image payload from the response.
func (c *Client) GenerateImage(ctx context.Context, apiKey, prompt string) (*GeneratedImage, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key missing")
	}

	payload := generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini: encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, tool.UpstreamError("gemini", resp.StatusCode, string(respBody))
	}

	b64, mime, err := ExtractImageData(respBody)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, tool.WrapError(tool.CodeExtraction, "image data field is not valid base64", err)
	}
	return &GeneratedImage{Data: data, MimeType: mime}, nil
}
