// Package brush provides the terrain brush engine: a registry of brush
// kernels that apply localized, world-space strokes to a heightfield.
//
// Every kernel is a pure function: it reads the input heights, returns
// a freshly allocated array, and never mutates its argument. Hosts may
// therefore treat reference identity of the result as a change signal.
package brush

import "fmt"

// ApplyArgs carries one stroke: the current grid, its world scale, and
// the stroke parameters. World coordinates are centered on the grid.
type ApplyArgs struct {
	Heights []float32
	VertsX  int
	VertsZ  int

	WorldWidth  float32
	WorldLength float32

	CenterX float32 // Stroke center, world space
	CenterZ float32
	Radius  float32 // World units
	// Strength has per-brush meaning: a world-unit delta for raise and
	// lower, a blend factor for the averaging brushes, a step size for
	// terrace, an amplitude for noise.
	Strength float32

	// HitY is the surface height under the cursor when the host knows
	// it. Brushes with a target elevation (flatten, level, fill,
	// drain) prefer it over the grid lookup.
	HitY *float32

	// Params holds brush-specific values validated against the brush's
	// ParamDefs. Unset keys mean "use the default".
	Params map[string]any
}

// Brush is one registered kernel.
type Brush struct {
	ID     string
	Label  string
	Params []ParamDef
	Apply  func(args ApplyArgs) []float32
}

// ParamType discriminates the ParamDef union.
type ParamType int32

// Param types.
const (
	ParamNumber ParamType = iota + 1
	ParamBoolean
	ParamSelect
	ParamText
)

// NumberParam bounds a numeric parameter. Min/Max are ignored when
// equal.
type NumberParam struct {
	Default float64
	Min     float64
	Max     float64
	Step    float64
}

// BooleanParam is a toggle parameter.
type BooleanParam struct {
	Default bool
}

// SelectParam is a fixed-choice parameter.
type SelectParam struct {
	Options []string
	Default string
}

// TextParam is a free-form string parameter.
type TextParam struct {
	Default string
}

// ParamDef describes one brush parameter for host UIs. Exactly one of
// the variant pointers is set, matching Type.
type ParamDef struct {
	Name  string
	Label string
	Type  ParamType

	Number  *NumberParam  // Set if Type == ParamNumber
	Boolean *BooleanParam // Set if Type == ParamBoolean
	Select  *SelectParam  // Set if Type == ParamSelect
	Text    *TextParam    // Set if Type == ParamText
}

// ValidateParams normalizes a free-form params map against a schema:
// unset values become defaults, numbers are clamped to their bounds,
// and select values outside the option list fall back to the default.
// Values of the wrong type are rejected.
func ValidateParams(defs []ParamDef, params map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(defs))
	for _, def := range defs {
		raw, ok := params[def.Name]
		switch def.Type {
		case ParamNumber:
			if !ok {
				out[def.Name] = def.Number.Default
				continue
			}
			v, okNum := toFloat64(raw)
			if !okNum {
				return nil, fmt.Errorf("param %q: expected number, got %T", def.Name, raw)
			}
			if def.Number.Max > def.Number.Min {
				if v < def.Number.Min {
					v = def.Number.Min
				}
				if v > def.Number.Max {
					v = def.Number.Max
				}
			}
			out[def.Name] = v
		case ParamBoolean:
			if !ok {
				out[def.Name] = def.Boolean.Default
				continue
			}
			v, okBool := raw.(bool)
			if !okBool {
				return nil, fmt.Errorf("param %q: expected boolean, got %T", def.Name, raw)
			}
			out[def.Name] = v
		case ParamSelect:
			if !ok {
				out[def.Name] = def.Select.Default
				continue
			}
			v, okStr := raw.(string)
			if !okStr {
				return nil, fmt.Errorf("param %q: expected string, got %T", def.Name, raw)
			}
			valid := false
			for _, opt := range def.Select.Options {
				if v == opt {
					valid = true
					break
				}
			}
			if !valid {
				v = def.Select.Default
			}
			out[def.Name] = v
		case ParamText:
			if !ok {
				out[def.Name] = def.Text.Default
				continue
			}
			v, okStr := raw.(string)
			if !okStr {
				return nil, fmt.Errorf("param %q: expected string, got %T", def.Name, raw)
			}
			out[def.Name] = v
		default:
			return nil, fmt.Errorf("param %q: unknown type %d", def.Name, def.Type)
		}
	}
	return out, nil
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// numberParam reads a validated number param with a fallback default.
func numberParam(params map[string]any, name string, def float64) float64 {
	if v, ok := params[name].(float64); ok {
		return v
	}
	return def
}

func boolParam(params map[string]any, name string, def bool) bool {
	if v, ok := params[name].(bool); ok {
		return v
	}
	return def
}

func stringParam(params map[string]any, name, def string) string {
	if v, ok := params[name].(string); ok {
		return v
	}
	return def
}
