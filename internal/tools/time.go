package tools

import (
	"context"
	"strconv"
	"time"

	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/tool"
)

// namedTimeFormats maps friendly format names to Go layouts. Anything
// else passed as format is treated as a layout string directly.
var namedTimeFormats = map[string]string{
	"rfc3339":  time.RFC3339,
	"kitchen":  time.Kitchen,
	"date":     "2006-01-02",
	"time":     "15:04:05",
	"datetime": "2006-01-02 15:04:05",
}

func currentTimeTool(deps Deps) tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "currentTime",
			Description: "Get the current date and time, optionally in a named format (rfc3339, unix, kitchen, date, time, datetime) or a Go layout, and an IANA timezone.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"format": map[string]any{
						"type":        "string",
						"description": "Named format or Go layout string; defaults to rfc3339",
					},
					"timezone": map[string]any{
						"type":        "string",
						"description": "IANA timezone name such as Europe/Berlin; defaults to UTC",
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			loc := time.UTC
			if tz := tool.String(args, "timezone"); tz != "" {
				parsed, err := time.LoadLocation(tz)
				if err != nil {
					return nil, tool.Errorf(tool.CodeValidation, "unknown timezone %q", tz)
				}
				loc = parsed
			}

			now := deps.now().In(loc)
			format := tool.String(args, "format")
			switch format {
			case "", "rfc3339":
				return mcp.NewTextResult(now.Format(time.RFC3339)), nil
			case "unix":
				return mcp.NewTextResult(strconv.FormatInt(now.Unix(), 10)), nil
			default:
				if layout, ok := namedTimeFormats[format]; ok {
					return mcp.NewTextResult(now.Format(layout)), nil
				}
				return mcp.NewTextResult(now.Format(format)), nil
			}
		},
	}
}
