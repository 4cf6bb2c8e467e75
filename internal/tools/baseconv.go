package tools

import (
	"context"
	"strconv"
	"strings"

	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/tool"
)

func convertBaseTool() tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "convertBase",
			Description: "Convert a number between bases 2 and 36, e.g. ff from base 16 to base 2.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"number": map[string]any{
						"type":        "string",
						"description": "The number to convert, in fromBase digits",
					},
					"fromBase": map[string]any{
						"type":        "integer",
						"description": "Source base, 2-36",
					},
					"toBase": map[string]any{
						"type":        "integer",
						"description": "Target base, 2-36",
					},
				},
				"required": []string{"number", "fromBase", "toBase"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			number := strings.TrimSpace(tool.String(args, "number"))
			fromBase, ok := tool.Integer(args["fromBase"])
			if !ok {
				return nil, tool.Errorf(tool.CodeValidation, "fromBase must be an integer")
			}
			toBase, ok := tool.Integer(args["toBase"])
			if !ok {
				return nil, tool.Errorf(tool.CodeValidation, "toBase must be an integer")
			}

			if fromBase < 2 || fromBase > 36 {
				return nil, tool.Errorf(tool.CodeValidation, "fromBase must be between 2 and 36, got %d", fromBase)
			}
			if toBase < 2 || toBase > 36 {
				return nil, tool.Errorf(tool.CodeValidation, "toBase must be between 2 and 36, got %d", toBase)
			}
			if number == "" {
				return nil, tool.Errorf(tool.CodeValidation, "number must not be empty")
			}

			value, err := strconv.ParseInt(number, fromBase, 64)
			if err != nil {
				return nil, tool.Errorf(tool.CodeValidation, "%q is not a valid base-%d number", number, fromBase)
			}
			return mcp.NewTextResult(strconv.FormatInt(value, toBase)), nil
		},
	}
}
