package session

import (
	"encoding/json"
	"errors"
	"maps"
	"time"
)

const metaKey = "meta"

// Meta is the bookkeeping stored with every session.
type Meta struct {
	LastVisit int64  `json:"last_visit"` // unix seconds
	Agent     string `json:"agent"`
	Verified  bool   `json:"verified"`
}

// Record is one session payload: metadata plus arbitrary application values.
// Values are JSON-encoded, so numbers come back as float64 after a round trip.
type Record struct {
	Meta   *Meta
	Values map[string]any
}

func NewRecord() Record {
	return Record{Values: make(map[string]any)}
}

func (r *Record) Get(key string) (any, bool) {
	if r.Values == nil {
		return nil, false
	}
	v, ok := r.Values[key]
	return v, ok
}

// Set stores a value. The reserved "meta" key is ignored.
func (r *Record) Set(key string, value any) {
	if key == metaKey {
		return
	}
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	r.Values[key] = value
}

func (r *Record) Delete(key string) {
	delete(r.Values, key)
}

// Touch records a visit. An empty agent keeps the previous one.
func (r *Record) Touch(now time.Time, agent string) {
	if r.Meta == nil {
		r.Meta = &Meta{}
	}
	r.Meta.LastVisit = now.Unix()
	if agent != "" {
		r.Meta.Agent = agent
	}
}

func (r *Record) SetVerified(verified bool) {
	if r.Meta == nil {
		r.Meta = &Meta{}
	}
	r.Meta.Verified = verified
}

// EncodeRecord produces the stored form: the session document as JSON,
// wrapped in a JSON string literal.
func EncodeRecord(r Record) ([]byte, error) {
	doc := make(map[string]any, len(r.Values)+1)
	maps.Copy(doc, r.Values)
	if r.Meta != nil {
		doc[metaKey] = r.Meta
	}

	inner, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

// DecodeRecord reverses EncodeRecord. Any failure in either layer is
// reported as ErrCorruptPayload.
func DecodeRecord(payload []byte) (Record, error) {
	var inner string
	if err := json.Unmarshal(payload, &inner); err != nil {
		return Record{}, errors.Join(ErrCorruptPayload, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(inner), &doc); err != nil {
		return Record{}, errors.Join(ErrCorruptPayload, err)
	}
	if doc == nil {
		return Record{}, ErrCorruptPayload
	}

	rec := NewRecord()
	for key, raw := range doc {
		if key == metaKey {
			if string(raw) == "null" {
				continue
			}
			var meta Meta
			if err := json.Unmarshal(raw, &meta); err != nil {
				return Record{}, errors.Join(ErrCorruptPayload, err)
			}
			rec.Meta = &meta
			continue
		}

		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return Record{}, errors.Join(ErrCorruptPayload, err)
		}
		rec.Values[key] = v
	}
	return rec, nil
}
