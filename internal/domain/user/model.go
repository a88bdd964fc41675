package user

import (
	"encoding/json"
	"strings"
)

// Key addresses one record: a document id inside a collection.
type Key struct {
	Collection string
	ID         string
}

// Validate rejects ids Firestore would refuse: empty, containing "/", "." and
// "..", and the reserved __name__ form.
func (k Key) Validate() error {
	for _, part := range []string{k.Collection, k.ID} {
		if !validSegment(part) {
			return ErrBadKey
		}
	}
	return nil
}

func validSegment(s string) bool {
	switch {
	case strings.TrimSpace(s) == "":
		return false
	case strings.Contains(s, "/"):
		return false
	case s == "." || s == "..":
		return false
	case len(s) >= 4 && strings.HasPrefix(s, "__") && strings.HasSuffix(s, "__"):
		return false
	}
	return true
}

func (k Key) String() string { return k.Collection + "/" + k.ID }

// Record is an opaque document: its id plus whatever fields are stored.
type Record struct {
	ID     string
	Fields map[string]any
}

// Field returns a top-level field as a string, if it is one.
func (r Record) Field(name string) (string, bool) {
	v, ok := r.Fields[name].(string)
	return v, ok
}

// MarshalJSON flattens the record to {"id": ..., ...fields}. The document id
// always wins over a stored "id" field.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	id, _ := m["id"].(string)
	delete(m, "id")
	r.ID = id
	r.Fields = m
	return nil
}
