package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in process. Values are held as JSON so Load
// returns the same shapes the database backends do.
type MemoryStore struct {
	mutex sync.RWMutex
	docs  map[string]map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]json.RawMessage)}
}

func docKey(collection, document string) string {
	return collection + "/" + document
}

func (m *MemoryStore) Save(_ context.Context, collection, document string, patch map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(patch))
	for k, v := range patch {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		encoded[k] = raw
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	doc, ok := m.docs[docKey(collection, document)]
	if !ok {
		doc = make(map[string]json.RawMessage, len(encoded))
		m.docs[docKey(collection, document)] = doc
	}
	for k, raw := range encoded {
		doc[k] = raw
	}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, collection, document string) (map[string]any, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	doc, ok := m.docs[docKey(collection, document)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(map[string]any, len(doc))
	for k, raw := range doc {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }
