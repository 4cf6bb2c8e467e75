package tools

import (
	"testing"

	"toolbelt-mcp/internal/tool"
)

func TestConvertBase(t *testing.T) {
	reg := convertBaseTool()
	tests := []struct {
		number   string
		fromBase int
		toBase   int
		want     string
	}{
		{"ff", 16, 2, "11111111"},
		{"255", 10, 16, "ff"},
		{"11111111", 2, 10, "255"},
		{"z", 36, 10, "35"},
		{"0", 10, 2, "0"},
		{"-ff", 16, 10, "-255"},
		{"  42  ", 10, 2, "101010"},
	}
	for _, tc := range tests {
		res := run(t, reg, map[string]any{
			"number":   tc.number,
			"fromBase": float64(tc.fromBase),
			"toBase":   float64(tc.toBase),
		})
		if got := res.Text(); got != tc.want {
			t.Errorf("convert %q base %d to %d = %q, want %q", tc.number, tc.fromBase, tc.toBase, got, tc.want)
		}
	}
}

func TestConvertBaseRejects(t *testing.T) {
	reg := convertBaseTool()
	tests := []struct {
		name string
		args map[string]any
	}{
		{"digit outside base", map[string]any{"number": "2", "fromBase": float64(2), "toBase": float64(10)}},
		{"fromBase too small", map[string]any{"number": "1", "fromBase": float64(1), "toBase": float64(10)}},
		{"toBase too large", map[string]any{"number": "1", "fromBase": float64(10), "toBase": float64(37)}},
		{"empty number", map[string]any{"number": "  ", "fromBase": float64(10), "toBase": float64(2)}},
		{"non-numeric base", map[string]any{"number": "1", "fromBase": "ten", "toBase": float64(2)}},
	}
	for _, tc := range tests {
		err := runErr(t, reg, tc.args)
		if tool.CodeOf(err) != tool.CodeValidation {
			t.Errorf("%s: code = %q, want %q", tc.name, tool.CodeOf(err), tool.CodeValidation)
		}
	}
}
