package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Param is a raw request value. It decodes from a JSON string, number or
// boolean so that `"faculty_id": 3` and `"faculty_id": "3"` bind the same way.
// JSON null leaves it empty.
type Param string

// UnmarshalJSON implements json.Unmarshaler.
func (p *Param) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*p = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Param(s)
		return nil
	default:
		// Numbers and booleans keep their literal text; objects and arrays
		// are kept verbatim so the rules reject them.
		*p = Param(b)
		return nil
	}
}

// String returns the value with surrounding whitespace removed.
func (p Param) String() string {
	return strings.TrimSpace(string(p))
}
