package response

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID accepts both JSON numbers and strings, the platform uses either
// depending on endpoint.
type ID string

// UnmarshalJSON ...
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// ObjectID is a mongo style {"$oid": "..."} identifier used by the quiz api
type ObjectID struct {
	OID string `json:"$oid"`
}
