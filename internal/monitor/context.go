package monitor

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexID is an identifier that snapshots may encode as either a JSON
// string or a JSON number. Both decode to the same string form so equal
// values from different sources compare equal.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// Context is a record's opaque payload. Snapshots carry it either as a
// JSON-encoded string or as a structured object; the ambiguity is
// resolved once here, at decode time, so downstream code never branches
// on representation. A payload that cannot be parsed keeps only its raw
// text and is otherwise ignored.
type Context struct {
	Raw    string
	Fields map[string]any
}

// IsZero reports whether the record carried no payload at all.
func (c Context) IsZero() bool {
	return c.Raw == "" && c.Fields == nil
}

func (c *Context) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		c.Raw = raw
		// A string payload is often JSON itself; try to resolve it now.
		c.Fields = decodeFields([]byte(raw))
		return nil
	}

	if fields := decodeFields(data); fields != nil {
		c.Fields = fields
		return nil
	}

	// Not an object and not a string: keep the literal for display.
	c.Raw = string(data)
	return nil
}

func (c Context) MarshalJSON() ([]byte, error) {
	if c.Fields != nil {
		return json.Marshal(c.Fields)
	}
	return json.Marshal(c.Raw)
}

// decodeFields decodes a JSON object preserving number fidelity, or
// returns nil if the data is not an object.
func decodeFields(data []byte) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil
	}
	return fields
}

// String renders the payload for display, preferring the original text.
func (c Context) String() string {
	if c.Raw != "" {
		return c.Raw
	}
	if c.Fields == nil {
		return ""
	}
	out, err := json.Marshal(c.Fields)
	if err != nil {
		return ""
	}
	return string(out)
}

// FieldString returns a top-level field normalized to string form.
// Numbers keep their literal representation.
func (c Context) FieldString(key string) (string, bool) {
	if c.Fields == nil {
		return "", false
	}
	v, ok := c.Fields[key]
	if !ok {
		return "", false
	}
	return stringifyField(v)
}

func stringifyField(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if val == "" {
			return "", false
		}
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}
