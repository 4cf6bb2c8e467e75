package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/tool"
)

func formatJSONTool() tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "formatJson",
			Description: "Pretty-print a JSON document. An indent of 0 compacts instead.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"json": map[string]any{
						"type":        "string",
						"description": "The JSON document to format",
					},
					"indent": map[string]any{
						"type":        "integer",
						"description": "Spaces per indent level, 0-8; defaults to 2",
					},
				},
				"required": []string{"json"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			input := tool.String(args, "json")

			indent := 2
			if raw, ok := args["indent"]; ok {
				n, ok := tool.Integer(raw)
				if !ok || n < 0 || n > 8 {
					return nil, tool.Errorf(tool.CodeValidation, "indent must be between 0 and 8")
				}
				indent = n
			}

			var buf bytes.Buffer
			if indent == 0 {
				if err := json.Compact(&buf, []byte(input)); err != nil {
					return nil, tool.Errorf(tool.CodeValidation, "input is not valid JSON: %v", err)
				}
			} else {
				if err := json.Indent(&buf, []byte(input), "", strings.Repeat(" ", indent)); err != nil {
					return nil, tool.Errorf(tool.CodeValidation, "input is not valid JSON: %v", err)
				}
			}
			return mcp.NewTextResult(buf.String()), nil
		},
	}
}
