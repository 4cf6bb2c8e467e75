package gemini

import (
	"encoding/json"
	"sort"
	"strings"

	"toolbelt-mcp/internal/tool"
)

// ExtractImageData locates the base64 image payload in a generation
// response body. The "data" field may sit anywhere inside a larger
// document, so the body is walked as JSON first and scanned as raw
// text when it is not clean JSON. Returns the base64 string unchanged
// plus the sibling mimeType when one is present.
func ExtractImageData(body []byte) (string, string, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err == nil {
		if data, mime, ok := findImageData(doc); ok {
			return data, mime, nil
		}
	}
	if data, ok := scanDataField(string(body)); ok {
		return data, "", nil
	}
	return "", "", tool.NewError(tool.CodeExtraction, "no image data field in generation response")
}

// findImageData walks the decoded document depth-first with sorted map
// keys so repeated calls pick the same field. A "data" entry holding a
// non-empty string wins; one with a sibling mimeType wins over one
// without.
func findImageData(node any) (string, string, bool) {
	var fallbackData string
	var found bool

	var walk func(n any) (string, string, bool)
	walk = func(n any) (string, string, bool) {
		switch t := n.(type) {
		case map[string]any:
			if v, exists := t["data"]; exists {
				if s, isStr := v.(string); isStr && s != "" {
					mime, _ := t["mimeType"].(string)
					if mime != "" {
						return s, mime, true
					}
					if !found {
						fallbackData = s
						found = true
					}
				}
			}
			for _, key := range sortedKeys(t) {
				if data, mime, ok := walk(t[key]); ok {
					return data, mime, ok
				}
			}
		case []any:
			for _, item := range t {
				if data, mime, ok := walk(item); ok {
					return data, mime, ok
				}
			}
		}
		return "", "", false
	}

	if data, mime, ok := walk(node); ok {
		return data, mime, ok
	}
	if found {
		return fallbackData, "", true
	}
	return "", "", false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scanDataField finds a quoted "data" label in raw text and returns
// its quoted string value. Handles escaped quotes but does not
// unescape the value: base64 payloads contain no escapes.
func scanDataField(body string) (string, bool) {
	rest := body
	for {
		idx := strings.Index(rest, `"data"`)
		if idx < 0 {
			return "", false
		}
		rest = rest[idx+len(`"data"`):]

		i := 0
		for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t' || rest[i] == '\n' || rest[i] == '\r') {
			i++
		}
		if i >= len(rest) || rest[i] != ':' {
			continue
		}
		i++
		for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t' || rest[i] == '\n' || rest[i] == '\r') {
			i++
		}
		if i >= len(rest) || rest[i] != '"' {
			continue
		}
		i++
		start := i
		for i < len(rest) {
			if rest[i] == '\\' {
				i += 2
				continue
			}
			if rest[i] == '"' {
				if value := rest[start:i]; value != "" {
					return value, true
				}
				break
			}
			i++
		}
		if i > len(rest) {
			i = len(rest)
		}
		rest = rest[i:]
	}
}
