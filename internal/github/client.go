// Package github provides a minimal client for the GitHub repository
// contents API, used to persist generated files.
package github

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

// Client is a minimal HTTP client for the contents API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a new client. If httpClient is nil, a default with a 30s
// timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// UploadParams describes one create-or-update-file call.
type UploadParams struct {
	Message string
	Content []byte
	Branch  string
}

type uploadRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
}

type uploadResponse struct {
	Content struct {
		DownloadURL string `json:"download_url"`
		HTMLURL     string `json:"html_url"`
	} `json:"content"`
}

// UploadFile PUTs the content as a new or updated file in the repo
// ("owner/name") and returns the public download URL from the response.
func (c *Client) UploadFile(ctx context.Context, token, repo, path string, p UploadParams) (string, error) {
	if token == "" {
		return "", errors.New("github token missing")
	}
	if repo == "" {
		return "", errors.New("github repo missing")
	}

	body, err := json.Marshal(uploadRequest{
		Message: p.Message,
		Content: base64.StdEncoding.EncodeToString(p.Content),
		Branch:  p.Branch,
	})
	if err != nil {
		return "", fmt.Errorf("github: encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/repos/%s/contents/%s", c.BaseURL, repo, strings.TrimLeft(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("github: request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("github: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", tool.UpstreamError("github", resp.StatusCode, string(respBody))
	}

	var out uploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", tool.WrapError(tool.CodeExtraction, "upload response is not valid json", err)
	}
	url := firstNonEmpty(out.Content.DownloadURL, out.Content.HTMLURL)
	if url == "" {
		return "", tool.NewError(tool.CodeExtraction, "no download_url in upload response")
	}
	return url, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
