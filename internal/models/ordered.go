package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one key/value pair of an Ordered object.
type Entry[V any] struct {
	Key   string
	Value V
}

// Ordered is a JSON object that keeps its keys in document order.
// Row order in the rendered tables follows the payload, so a plain map
// cannot be used.
type Ordered[V any] struct {
	Entries []Entry[V]
}

// NewOrdered builds an Ordered from entries, later duplicates replacing
// earlier ones in place.
func NewOrdered[V any](entries ...Entry[V]) *Ordered[V] {
	o := &Ordered[V]{}
	for _, e := range entries {
		o.Set(e.Key, e.Value)
	}
	return o
}

func (o *Ordered[V]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Entries)
}

func (o *Ordered[V]) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		keys[i] = e.Key
	}
	return keys
}

func (o *Ordered[V]) Get(key string) (V, bool) {
	var zero V
	if o == nil {
		return zero, false
	}
	for _, e := range o.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return zero, false
}

// Set replaces the value of an existing key without moving it, or appends.
func (o *Ordered[V]) Set(key string, value V) {
	for i := range o.Entries {
		if o.Entries[i].Key == key {
			o.Entries[i].Value = value
			return
		}
	}
	o.Entries = append(o.Entries, Entry[V]{Key: key, Value: value})
}

func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	o.Entries = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var value V
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		o.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (o Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
