package schema

import (
	"encoding/json"
	"fmt"
)

// Record is a loosely typed row keyed by column name, as used by forms and
// exports.
type Record map[string]interface{}

// ToRecord converts a typed model into a Record using its JSON shape.
func ToRecord(v interface{}) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// String returns the value of key as display text. Nested objects such as
// an embedded department render their "name".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}:
		if name, ok := v["name"].(string); ok {
			return name
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ID returns the record identifier.
func (r Record) ID() string {
	return r.String(ColumnID)
}
