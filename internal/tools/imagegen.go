package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"toolbelt-mcp/internal/github"
	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/secrets"
	"toolbelt-mcp/internal/tool"
)

// generateImageTool produces an image from a text prompt and commits it
// to the configured GitHub repository. Stages run in order: read the
// Gemini key, generate, inspect the payload, read the repo and token,
// upload. A failure surfaces as-is; earlier stages are not compensated.
func generateImageTool(deps Deps) tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "generateImage",
			Description: "Generate an image from a text prompt and upload it to the configured GitHub repository. Returns a markdown image reference.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"prompt": map[string]any{
						"type":        "string",
						"description": "Text description of the image to generate",
					},
				},
				"required": []string{"prompt"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			prompt := strings.TrimSpace(tool.String(args, "prompt"))
			if prompt == "" {
				return nil, tool.NewError(tool.CodeValidation, "prompt must not be empty")
			}

			apiKey, err := deps.Secrets.Get(ctx, secrets.KeyGeminiAPIKey)
			if errors.Is(err, secrets.ErrNotFound) {
				return nil, tool.NewError(tool.CodeMissingConfiguration, "Gemini API key is not configured; run setGeminiKey first")
			}
			if err != nil {
				return nil, fmt.Errorf("tools: read gemini key: %w", err)
			}

			img, err := deps.Gemini.GenerateImage(ctx, apiKey, prompt)
			if err != nil {
				return nil, err
			}

			info, err := inspectImage(img.Data, img.MimeType)
			if err != nil {
				return nil, err
			}

			repo, err := deps.Secrets.Get(ctx, secrets.KeyGithubRepo)
			if errors.Is(err, secrets.ErrNotFound) {
				return nil, tool.NewError(tool.CodeMissingConfiguration, "GitHub repository is not configured; run setGithubRepo first")
			}
			if err != nil {
				return nil, fmt.Errorf("tools: read github repo: %w", err)
			}
			token, err := deps.Secrets.Get(ctx, secrets.KeyGithubToken)
			if errors.Is(err, secrets.ErrNotFound) {
				return nil, tool.NewError(tool.CodeMissingConfiguration, "GitHub token is not configured; run setGithubToken first")
			}
			if err != nil {
				return nil, fmt.Errorf("tools: read github token: %w", err)
			}

			name := "img-" + uuid.NewString()[:8] + "." + info.Ext
			filePath := name
			if deps.UploadDir != "" {
				filePath = path.Join(deps.UploadDir, name)
			}

			url, err := deps.Github.UploadFile(ctx, token, repo, filePath, github.UploadParams{
				Message: commitMessage(prompt),
				Content: img.Data,
				Branch:  deps.UploadBranch,
			})
			if err != nil {
				return nil, err
			}

			deps.logger().Info("image uploaded",
				"repo", repo, "path", filePath, "format", info.Format, "bytes", len(img.Data))

			dest := repo
			if deps.UploadBranch != "" {
				dest += "@" + deps.UploadBranch
			}
			text := fmt.Sprintf("![%s](%s)\n\n%dx%d %s (%d bytes) uploaded to %s as %s",
				markdownAlt(prompt), url, info.Width, info.Height, info.Format, len(img.Data), dest, filePath)
			return mcp.NewTextResult(text), nil
		},
	}
}

type imageInfo struct {
	Width  int
	Height int
	Format string
	Ext    string
}

// inspectImage verifies the payload is a decodable image and reports
// its dimensions. The header gives dimensions and format; the full
// decode catches truncated or corrupt payloads the header misses.
func inspectImage(data []byte, mimeType string) (imageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return imageInfo{}, tool.WrapError(tool.CodeExtraction, "generated payload is not a decodable image", err)
	}
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return imageInfo{}, tool.WrapError(tool.CodeExtraction, "generated image payload is truncated or corrupt", err)
	}
	return imageInfo{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
		Ext:    extensionFor(mimeType, format),
	}, nil
}

// extensionFor picks the file extension from the declared MIME type,
// falling back to the sniffed format name.
func extensionFor(mimeType, sniffed string) string {
	m := mimeType
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	switch strings.TrimSpace(strings.ToLower(m)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	}
	if sniffed == "jpeg" {
		return "jpg"
	}
	if sniffed != "" {
		return sniffed
	}
	return "png"
}

func commitMessage(prompt string) string {
	const max = 60
	p := prompt
	if r := []rune(p); len(r) > max {
		p = string(r[:max]) + "..."
	}
	return "Add generated image: " + p
}

// markdownAlt makes the prompt safe to embed as image alt text.
func markdownAlt(prompt string) string {
	alt := strings.NewReplacer("[", "(", "]", ")", "\n", " ").Replace(prompt)
	if r := []rune(alt); len(r) > 80 {
		alt = string(r[:80]) + "..."
	}
	return alt
}
