package tools

import (
	"context"
	"strconv"
	"strings"

	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/tool"
)

// lengthFactors maps length units to meters.
var lengthFactors = map[string]float64{
	"mm": 0.001,
	"cm": 0.01,
	"m":  1,
	"km": 1000,
	"in": 0.0254,
	"ft": 0.3048,
	"yd": 0.9144,
	"mi": 1609.344,
}

// massFactors maps mass units to kilograms.
var massFactors = map[string]float64{
	"mg": 1e-6,
	"g":  0.001,
	"kg": 1,
	"oz": 0.028349523125,
	"lb": 0.45359237,
}

func convertUnitTool() tool.Registration {
	return tool.Registration{
		Tool: mcp.Tool{
			Name:        "convertUnit",
			Description: "Convert a value between units of temperature (C, F, K), length (mm, cm, m, km, in, ft, yd, mi), or mass (mg, g, kg, oz, lb).",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"value": map[string]any{
						"type":        "number",
						"description": "The value to convert",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "One of temperature, length, mass",
					},
					"fromUnit": map[string]any{
						"type":        "string",
						"description": "Unit the value is in",
					},
					"toUnit": map[string]any{
						"type":        "string",
						"description": "Unit to convert to",
					},
				},
				"required": []string{"value", "category", "fromUnit", "toUnit"},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error) {
			value, ok := tool.Number(args["value"])
			if !ok {
				return nil, tool.Errorf(tool.CodeValidation, "value must be a number")
			}
			category := strings.ToLower(strings.TrimSpace(tool.String(args, "category")))
			from := normalizeUnit(tool.String(args, "fromUnit"))
			to := normalizeUnit(tool.String(args, "toUnit"))

			var out float64
			var err error
			switch category {
			case "temperature":
				out, err = convertTemperature(value, from, to)
			case "length":
				out, err = convertByFactor(value, from, to, lengthFactors, "length")
			case "mass", "weight":
				out, err = convertByFactor(value, from, to, massFactors, "mass")
			default:
				return nil, tool.Errorf(tool.CodeValidation, "unknown category %q; use temperature, length, or mass", category)
			}
			if err != nil {
				return nil, err
			}
			return mcp.NewTextResult(formatNumber(out)), nil
		},
	}
}

// normalizeUnit lowercases and strips the long unit spellings down to
// the symbols the conversion tables use.
func normalizeUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	switch u {
	case "celsius":
		return "c"
	case "fahrenheit":
		return "f"
	case "kelvin":
		return "k"
	case "millimeter", "millimeters":
		return "mm"
	case "centimeter", "centimeters":
		return "cm"
	case "meter", "meters":
		return "m"
	case "kilometer", "kilometers":
		return "km"
	case "inch", "inches":
		return "in"
	case "foot", "feet":
		return "ft"
	case "yard", "yards":
		return "yd"
	case "mile", "miles":
		return "mi"
	case "milligram", "milligrams":
		return "mg"
	case "gram", "grams":
		return "g"
	case "kilogram", "kilograms":
		return "kg"
	case "ounce", "ounces":
		return "oz"
	case "pound", "pounds":
		return "lb"
	}
	return u
}

func convertTemperature(value float64, from, to string) (float64, error) {
	var celsius float64
	switch from {
	case "c":
		celsius = value
	case "f":
		celsius = (value - 32) * 5 / 9
	case "k":
		celsius = value - 273.15
	default:
		return 0, tool.Errorf(tool.CodeValidation, "unknown temperature unit %q", from)
	}
	switch to {
	case "c":
		return celsius, nil
	case "f":
		return celsius*9/5 + 32, nil
	case "k":
		return celsius + 273.15, nil
	default:
		return 0, tool.Errorf(tool.CodeValidation, "unknown temperature unit %q", to)
	}
}

func convertByFactor(value float64, from, to string, factors map[string]float64, category string) (float64, error) {
	fromFactor, ok := factors[from]
	if !ok {
		return 0, tool.Errorf(tool.CodeValidation, "unknown %s unit %q", category, from)
	}
	toFactor, ok := factors[to]
	if !ok {
		return 0, tool.Errorf(tool.CodeValidation, "unknown %s unit %q", category, to)
	}
	return value * fromFactor / toFactor, nil
}

// formatNumber renders with the fewest digits that round-trip, so
// whole results print without a decimal point.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
