package tools

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/tool"
)

const (
	charsetAlphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	charsetLetters      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	charsetDigits       = "0123456789"
	charsetHex          = "0123456789abcdef"
)

var namedCharsets = map[string]string{
	"alphanumeric": charsetAlphanumeric,
	"letters":      charsetLetters,
	"digits":       charsetDigits,
	"hex":          charsetHex,
}

func randomNumberTool() tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "randomNumber",
			Description: "Generate a random integer in the inclusive range [min, max]; defaults to 0 through 100.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"min": map[string]any{
						"type":        "integer",
						"description": "Lower bound, inclusive; defaults to 0",
					},
					"max": map[string]any{
						"type":        "integer",
						"description": "Upper bound, inclusive; defaults to 100",
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			min, max := 0, 100
			if raw, ok := args["min"]; ok {
				n, ok := tool.Integer(raw)
				if !ok {
					return nil, tool.Errorf(tool.CodeValidation, "min must be an integer")
				}
				min = n
			}
			if raw, ok := args["max"]; ok {
				n, ok := tool.Integer(raw)
				if !ok {
					return nil, tool.Errorf(tool.CodeValidation, "max must be an integer")
				}
				max = n
			}
			if min > max {
				return nil, tool.Errorf(tool.CodeValidation, "min %d is greater than max %d", min, max)
			}

			span := big.NewInt(int64(max) - int64(min) + 1)
			n, err := rand.Int(rand.Reader, span)
			if err != nil {
				return nil, fmt.Errorf("tools: read randomness: %w", err)
			}
			return mcp.NewTextResult(strconv.FormatInt(n.Int64()+int64(min), 10)), nil
		},
	}
}

func randomStringTool() tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "randomString",
			Description: "Generate a random string from a named charset (alphanumeric, letters, digits, hex); defaults to 16 alphanumeric characters.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"length": map[string]any{
						"type":        "integer",
						"description": "Length, 1-1024; defaults to 16",
					},
					"charset": map[string]any{
						"type":        "string",
						"description": "One of alphanumeric, letters, digits, hex",
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			length := 16
			if raw, ok := args["length"]; ok {
				n, ok := tool.Integer(raw)
				if !ok || n < 1 || n > 1024 {
					return nil, tool.Errorf(tool.CodeValidation, "length must be between 1 and 1024")
				}
				length = n
			}

			charset := charsetAlphanumeric
			if name := tool.String(args, "charset"); name != "" {
				set, ok := namedCharsets[name]
				if !ok {
					return nil, tool.Errorf(tool.CodeValidation, "unknown charset %q; use alphanumeric, letters, digits, or hex", name)
				}
				charset = set
			}

			out := make([]byte, length)
			setLen := big.NewInt(int64(len(charset)))
			for i := range out {
				idx, err := rand.Int(rand.Reader, setLen)
				if err != nil {
					return nil, fmt.Errorf("tools: read randomness: %w", err)
				}
				out[i] = charset[idx.Int64()]
			}
			return mcp.NewTextResult(string(out)), nil
		},
	}
}

func randomUUIDTool() tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "randomUuid",
			Description: "Generate a random version 4 UUID.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			return mcp.NewTextResult(uuid.NewString()), nil
		},
	}
}
