package tool

import "math"

// ValidateArgs checks an argument bag against a tool's input schema:
// every required field must be present and every supplied field whose
// property declares a type must match it. Unknown fields are tolerated.
func ValidateArgs(schema map[string]any, args map[string]any) error {
	if schema == nil {
		return nil
	}
	for _, name := range requiredFields(schema) {
		if _, ok := args[name]; !ok {
			return Errorf(CodeValidation, "missing required argument %q", name)
		}
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}
	for name, value := range args {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		want, ok := prop["type"].(string)
		if !ok {
			continue
		}
		if err := checkType(name, want, value); err != nil {
			return err
		}
	}
	return nil
}

// requiredFields reads the required list, which appears as []string in
// hand-built schemas and []any after a JSON round trip.
func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, v := range req {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func checkType(name, want string, value any) error {
	if value == nil {
		return Errorf(CodeValidation, "argument %q must not be null", name)
	}
	switch want {
	case "string":
		if _, ok := value.(string); !ok {
			return typeMismatch(name, want, value)
		}
	case "number":
		if !isNumber(value) {
			return typeMismatch(name, want, value)
		}
	case "integer":
		if !isInteger(value) {
			return typeMismatch(name, want, value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return typeMismatch(name, want, value)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return typeMismatch(name, want, value)
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return typeMismatch(name, want, value)
		}
	}
	return nil
}

func typeMismatch(name, want string, value any) error {
	return Errorf(CodeValidation, "argument %q must be a %s, got %T", name, want, value)
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return true
	}
	return false
}

func isInteger(v any) bool {
	switch t := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return t == math.Trunc(t)
	case float32:
		return float64(t) == math.Trunc(float64(t))
	}
	return false
}

// Number coerces a decoded JSON value to float64. Handlers use it to
// read numeric arguments that may arrive as any numeric kind.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// Integer coerces a decoded JSON value to int, rejecting fractions.
func Integer(v any) (int, bool) {
	f, ok := Number(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// String reads a string argument, returning "" when absent.
func String(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}
