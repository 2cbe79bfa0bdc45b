package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// StatusValue is a status exactly as the backend delivered it. Live payloads
// carry numeric codes, demo payloads carry names; both decode into this type
// and are classified by the status package.
type StatusValue struct {
	code    int
	name    string
	numeric bool
	set     bool
}

// StatusCode builds a numeric status value.
func StatusCode(code int) StatusValue {
	return StatusValue{code: code, numeric: true, set: true}
}

// StatusName builds a string status value.
func StatusName(name string) StatusValue {
	return StatusValue{name: name, set: true}
}

// Code returns the numeric code when the value arrived as a number.
func (s StatusValue) Code() (int, bool) {
	return s.code, s.numeric
}

// Name returns the raw string when the value arrived as a string.
func (s StatusValue) Name() (string, bool) {
	return s.name, s.set && !s.numeric
}

// IsZero reports whether no status was present at all.
func (s StatusValue) IsZero() bool { return !s.set }

func (s StatusValue) String() string {
	switch {
	case !s.set:
		return ""
	case s.numeric:
		return strconv.Itoa(s.code)
	default:
		return s.name
	}
}

// MarshalJSON writes the value back in its original representation.
func (s StatusValue) MarshalJSON() ([]byte, error) {
	switch {
	case !s.set:
		return []byte("null"), nil
	case s.numeric:
		return []byte(strconv.Itoa(s.code)), nil
	default:
		return json.Marshal(s.name)
	}
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (s *StatusValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = StatusValue{}
		return nil
	}
	if b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*s = StatusName(name)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("status must be a string or a number, got %s", string(b))
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		// Non-integral codes never match the code table.
		*s = StatusCode(-1)
		return nil
	}
	*s = StatusCode(int(f))
	return nil
}
