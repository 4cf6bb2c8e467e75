package tools

import (
	"context"
	"fmt"
	"strings"

	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/secrets"
	"toolbelt-mcp/internal/tool"
)

// The admin tools write one secret each and confirm without echoing the
// value. Secrets are write-only from the caller's perspective: no tool
// reads one back.

func setGithubTokenTool(deps Deps) tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "setGithubToken",
			Description: "Store the GitHub access token used to upload generated files. Write-only.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"token": map[string]any{
						"type":        "string",
						"description": "A GitHub token with contents write access",
					},
				},
				"required": []string{"token"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			token := strings.TrimSpace(tool.String(args, "token"))
			if token == "" {
				return nil, tool.NewError(tool.CodeValidation, "token must not be empty")
			}
			if err := deps.Secrets.Set(ctx, secrets.KeyGithubToken, token); err != nil {
				return nil, fmt.Errorf("tools: store github token: %w", err)
			}
			deps.logger().Info("secret updated", "key", secrets.KeyGithubToken)
			return mcp.NewTextResult("GitHub token saved."), nil
		},
	}
}

func setGithubRepoTool(deps Deps) tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "setGithubRepo",
			Description: "Store the GitHub repository (owner/name) that receives generated files. Write-only.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"repo": map[string]any{
						"type":        "string",
						"description": "Repository in owner/name form",
					},
				},
				"required": []string{"repo"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			repo := strings.TrimSpace(tool.String(args, "repo"))
			if !validRepo(repo) {
				return nil, tool.Errorf(tool.CodeValidation, "repo must be in owner/name form, got %q", repo)
			}
			if err := deps.Secrets.Set(ctx, secrets.KeyGithubRepo, repo); err != nil {
				return nil, fmt.Errorf("tools: store github repo: %w", err)
			}
			deps.logger().Info("secret updated", "key", secrets.KeyGithubRepo)
			return mcp.NewTextResult(fmt.Sprintf("GitHub repository set to %s.", repo)), nil
		},
	}
}

func setGeminiKeyTool(deps Deps) tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "setGeminiKey",
			Description: "Store the Gemini API key used for image generation. Write-only.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"apiKey": map[string]any{
						"type":        "string",
						"description": "A Gemini API key",
					},
				},
				"required": []string{"apiKey"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			apiKey := strings.TrimSpace(tool.String(args, "apiKey"))
			if apiKey == "" {
				return nil, tool.NewError(tool.CodeValidation, "apiKey must not be empty")
			}
			if err := deps.Secrets.Set(ctx, secrets.KeyGeminiAPIKey, apiKey); err != nil {
				return nil, fmt.Errorf("tools: store gemini key: %w", err)
			}
			deps.logger().Info("secret updated", "key", secrets.KeyGeminiAPIKey)
			return mcp.NewTextResult("Gemini API key saved."), nil
		},
	}
}

// validRepo requires exactly one slash with non-empty, space-free
// halves.
func validRepo(repo string) bool {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return false
	}
	if strings.ContainsAny(repo, " \t") || strings.Contains(name, "/") {
		return false
	}
	return true
}
