package plot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Params holds named indicator parameters. Values are numeric or
// categorical; typed accessors convert the usual literal types.
type Params map[string]any

// Clone returns a shallow copy of the parameter map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Int returns the parameter as an int when present and integral.
// Fractional floats do not truncate; they fail the lookup.
func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

// Float returns the parameter as a float64 when present and numeric.
func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// intParam reads a required integer parameter and validates its lower bound.
func intParam(p Params, name, key string, min int) (int, error) {
	value, ok := p.Int(key)
	if !ok {
		return 0, fmt.Errorf("%s: %q must be an integer: %w", name, key, ErrInvalidParameter)
	}
	if value < min {
		return 0, fmt.Errorf("%s: %q must be >= %d, got %d: %w", name, key, min, value, ErrInvalidParameter)
	}
	return value, nil
}

// floatParam reads a required float parameter and validates a strictly
// positive lower bound when min > 0.
func floatParam(p Params, name, key string, min float64) (float64, error) {
	value, ok := p.Float(key)
	if !ok {
		return 0, fmt.Errorf("%s: %q must be numeric: %w", name, key, ErrInvalidParameter)
	}
	if value < min {
		return 0, fmt.Errorf("%s: %q must be >= %v, got %v: %w", name, key, min, value, ErrInvalidParameter)
	}
	return value, nil
}

// ParseName splits an inline period from a request name: "MA20" yields
// ("MA", 20, true) and "MACD" yields ("MACD", 0, false). The inline
// value only fills the default period; an explicit period parameter
// always wins. Normalization happens once at the request boundary, the
// rest of the pipeline never re-parses names.
func ParseName(name string) (base string, period int, ok bool) {
	trimmed := strings.ToUpper(strings.TrimSpace(name))

	cut := len(trimmed)
	for cut > 0 && unicode.IsDigit(rune(trimmed[cut-1])) {
		cut--
	}

	if cut == 0 || cut == len(trimmed) {
		return trimmed, 0, false
	}

	period, err := strconv.Atoi(trimmed[cut:])
	if err != nil || period <= 0 {
		return trimmed, 0, false
	}

	return trimmed[:cut], period, true
}
