package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// LooseString decodes a JSON string, number or boolean into its text form.
// null decodes to "". Form clients send phone numbers, pin codes and OTPs
// either quoted or bare, so request fields use it instead of string.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LooseString(v)
	case bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")):
		*s = LooseString(data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected a scalar, got %s", data)
		}
		*s = LooseString(normalizeNumber(n))
	}
	return nil
}

// String returns the decoded text.
func (s LooseString) String() string { return string(s) }

// normalizeNumber keeps integers digit-for-digit and trims float noise.
func normalizeNumber(n json.Number) string {
	if _, err := n.Int64(); err == nil {
		return n.String()
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
