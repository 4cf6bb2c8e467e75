package tools

import (
	"testing"

	"toolbelt-mcp/internal/tool"
)

func TestFormatJSONDefaultIndent(t *testing.T) {
	res := run(t, formatJSONTool(), map[string]any{"json": `{"b":1,"a":[true,null]}`})
	want := "{\n  \"b\": 1,\n  \"a\": [\n    true,\n    null\n  ]\n}"
	if got := res.Text(); got != want {
		t.Errorf("formatted = %q, want %q", got, want)
	}
}

func TestFormatJSONCompact(t *testing.T) {
	res := run(t, formatJSONTool(), map[string]any{
		"json":   "{\n  \"a\": 1,\n  \"b\": 2\n}",
		"indent": float64(0),
	})
	if got := res.Text(); got != `{"a":1,"b":2}` {
		t.Errorf("compacted = %q", got)
	}
}

func TestFormatJSONIndentWidth(t *testing.T) {
	res := run(t, formatJSONTool(), map[string]any{
		"json":   `{"a":1}`,
		"indent": float64(4),
	})
	if got := res.Text(); got != "{\n    \"a\": 1\n}" {
		t.Errorf("indent 4 = %q", got)
	}
}

func TestFormatJSONRejectsBadInput(t *testing.T) {
	reg := formatJSONTool()

	err := runErr(t, reg, map[string]any{"json": `{"a":`})
	if tool.CodeOf(err) != tool.CodeValidation {
		t.Errorf("bad json code = %q, want %q", tool.CodeOf(err), tool.CodeValidation)
	}

	err = runErr(t, reg, map[string]any{"json": `{}`, "indent": float64(9)})
	if tool.CodeOf(err) != tool.CodeValidation {
		t.Errorf("indent 9 code = %q, want %q", tool.CodeOf(err), tool.CodeValidation)
	}
}
