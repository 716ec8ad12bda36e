package credstore

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Store backed by a mutex-guarded map. Nothing
// survives the process; it exists for tests and short-lived tools.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.data[KeyUser]
	if !ok {
		return nil, nil
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil || !rec.valid() {
		delete(m.data, KeyUser)
		delete(m.data, KeyAuthToken)
		return nil, ErrCorruptRecord
	}
	return &rec, nil
}

func (m *Memory) Save(_ context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[KeyUser] = raw
	m.data[KeyAuthToken] = []byte(rec.Token)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, KeyUser)
	delete(m.data, KeyAuthToken)
	return nil
}

func (m *Memory) Token(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data[KeyAuthToken]), nil
}

func (m *Memory) RememberMe(_ context.Context) (bool, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data[KeyRememberMe]) == "true", string(m.data[KeyRememberedEmail]), nil
}

func (m *Memory) SetRememberMe(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[KeyRememberMe] = []byte("true")
	m.data[KeyRememberedEmail] = []byte(email)
	return nil
}

func (m *Memory) ClearRememberMe(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, KeyRememberMe)
	delete(m.data, KeyRememberedEmail)
	return nil
}

// seed injects a raw value under a logical key, bypassing Save. Used by
// tests to simulate corrupt persisted state.
func (m *Memory) seed(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
}
