package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Number accepts a JSON number or a numeric string. The device fleet is
// inconsistent about quoting, so "12.5" and 12.5 both have to land.
// Anything else fails the bind and the whole update is rejected before any
// mutation happens.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid number %s", string(data))
	}
	*n = Number(v)
	return nil
}

// Bool accepts a JSON bool, a number (zero is false), or a parseable bool
// string.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	switch {
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid bool %q", s)
		}
		*b = Bool(v)
	case string(data) == "true" || string(data) == "false":
		*b = data[0] == 't'
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("invalid bool %s", string(data))
		}
		*b = v != 0
	}
	return nil
}

func (n *Number) floatPtr() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}

func (b *Bool) boolPtr() *bool {
	if b == nil {
		return nil
	}
	v := bool(*b)
	return &v
}
