package pricing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Payload is a service detail object as submitted by the calculator form.
type Payload map[string]any

// Merge returns general overlaid with p; keys of p win.
func (p Payload) Merge(general Payload) Payload {
	out := make(Payload, len(general)+len(p))
	for k, v := range general {
		out[k] = v
	}
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p Payload) Has(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func (p Payload) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

// decode maps the payload onto a typed details struct.
func (p Payload) decode(dst any) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// Number accepts JSON numbers as well as numeric strings ("3", "2,5").
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch s {
	case "null", `""`, "false":
		*n = 0
		return nil
	case "true":
		*n = 1
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.Replace(strings.TrimSpace(str), ",", ".", 1)
		if s == "" {
			*n = 0
			return nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 { return float64(n) }

// Flag accepts booleans, "1"/"0", "yes"/"no", "on"/"off" and numbers.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = str
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "ja", "on":
		*f = true
	case "false", "0", "no", "nein", "off", "", "null":
		*f = false
	default:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = v != 0
			return nil
		}
		return fmt.Errorf("invalid flag %q", s)
	}
	return nil
}

// numberOf reads a loosely typed numeric field without failing.
func numberOf(p Payload, key string) float64 {
	raw, err := json.Marshal(p[key])
	if err != nil {
		return 0
	}
	var n Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return n.Float()
}
