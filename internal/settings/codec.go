package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yla-umzug/quotes-service/internal/model"
)

// Decode converts stored text into its typed value: integer → int64,
// decimal → float64, boolean → bool, json → decoded value, otherwise string.
func Decode(typ model.SettingType, raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	switch typ {
	case model.SettingTypeInteger:
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, raw)
		}
		return i, nil
	case model.SettingTypeDecimal:
		f, err := strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a decimal", ErrInvalidValue, raw)
		}
		return f, nil
	case model.SettingTypeBoolean:
		b, ok := parseBool(trimmed)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, raw)
		}
		return b, nil
	case model.SettingTypeJSON:
		if trimmed == "" {
			return nil, nil
		}
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// Encode renders a value as stored text for typ. Booleans are stored as
// "1"/"0".
func Encode(typ model.SettingType, value any) (string, error) {
	switch typ {
	case model.SettingTypeInteger:
		switch v := value.(type) {
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			if v != float64(int64(v)) {
				return "", fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, v)
			}
			return strconv.FormatInt(int64(v), 10), nil
		case string:
			if _, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err != nil {
				return "", fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
			}
			return strings.TrimSpace(v), nil
		}
	case model.SettingTypeDecimal:
		switch v := value.(type) {
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case string:
			f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(v), ",", ".", 1), 64)
			if err != nil {
				return "", fmt.Errorf("%w: %q is not a decimal", ErrInvalidValue, v)
			}
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
	case model.SettingTypeBoolean:
		switch v := value.(type) {
		case bool:
			if v {
				return "1", nil
			}
			return "0", nil
		case string:
			b, ok := parseBool(v)
			if !ok {
				return "", fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
			}
			return Encode(typ, b)
		case float64:
			return Encode(typ, v != 0)
		}
	case model.SettingTypeJSON:
		if s, ok := value.(string); ok {
			if !json.Valid([]byte(s)) {
				return "", fmt.Errorf("%w: invalid json", ErrInvalidValue)
			}
			return s, nil
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return string(raw), nil
	default:
		if value == nil {
			return "", nil
		}
		return fmt.Sprint(value), nil
	}
	return "", fmt.Errorf("%w: %T cannot be stored as %s", ErrInvalidValue, value, typ)
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off", "":
		return false, true
	default:
		return false, false
	}
}
