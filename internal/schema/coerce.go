package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrTypeMismatch is returned when a raw value cannot be coerced to its
// declared parameter type.
var ErrTypeMismatch = errors.New("type mismatch")

// truthy is the accepted set of true-valued strings for boolean coercion.
// Anything outside the set coerces to false; ambiguous input is not an
// error. That permissiveness is intentional.
var truthy = map[string]bool{"true": true, "yes": true, "1": true, "t": true}

// Coerce converts a raw argument value to the property's declared type.
// Raw values may come from decoded JSON (numbers arrive as float64) or from
// interactive string input; both forms are accepted for every type.
//
// Results by declared type:
//
//	integer -> int
//	number  -> float64
//	string  -> string
//	boolean -> bool
//	array   -> []int (integer elements; the only element type current tools need)
func Coerce(prop Property, raw interface{}) (interface{}, error) {
	switch prop.Type {
	case TypeInteger:
		return coerceInteger(raw)
	case TypeNumber:
		return coerceNumber(raw)
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string, got %T", ErrTypeMismatch, raw)
		}
		return s, nil
	case TypeBoolean:
		return coerceBoolean(raw), nil
	case TypeArray:
		return coerceIntArray(raw)
	default:
		return nil, fmt.Errorf("%w: unsupported declared type %q", ErrTypeMismatch, prop.Type)
	}
}

func coerceInteger(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrTypeMismatch, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, v)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: expected integer, got %T", ErrTypeMismatch, raw)
	}
}

func coerceNumber(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: expected number, got %T", ErrTypeMismatch, raw)
	}
}

func coerceBoolean(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return truthy[strings.ToLower(strings.TrimSpace(v))]
	default:
		return false
	}
}

func coerceIntArray(raw interface{}) ([]int, error) {
	switch v := raw.(type) {
	case []int:
		return v, nil
	case []interface{}:
		out := make([]int, len(v))
		for i, elem := range v {
			n, err := coerceInteger(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case string:
		parts := strings.Split(v, ",")
		out := make([]int, len(parts))
		for i, part := range parts {
			n, err := coerceInteger(part)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected array, got %T", ErrTypeMismatch, raw)
	}
}
