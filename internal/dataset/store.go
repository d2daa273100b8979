// File path: internal/dataset/store.go
package dataset

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store keeps one raw JSON dataset file per scope under a root directory.
// Scope keys are the vector index scope keys: "global" or a session UUID.
type Store struct {
	path string
	mu   sync.RWMutex
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("dataset: store path required")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("dataset: create store dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Save stores the raw dataset bytes for a scope, replacing any previous
// dataset. The bytes must be valid JSON.
func (s *Store) Save(scopeKey string, raw []byte) error {
	filePath, err := s.scopeFile(scopeKey)
	if err != nil {
		return err
	}
	if !json.Valid(raw) {
		return fmt.Errorf("dataset: scope %q: payload is not valid JSON", scopeKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("dataset: write scope %q: %w", scopeKey, err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("dataset: replace scope %q: %w", scopeKey, err)
	}
	return nil
}

// Load returns the raw dataset bytes for a scope. A missing dataset keeps
// fs.ErrNotExist in the error chain.
func (s *Store) Load(scopeKey string) ([]byte, error) {
	filePath, err := s.scopeFile(scopeKey)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("dataset: load scope %q: %w", scopeKey, err)
	}
	return raw, nil
}

// Delete removes a scope's dataset file. Deleting an absent scope is a no-op.
func (s *Store) Delete(scopeKey string) error {
	filePath, err := s.scopeFile(scopeKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("dataset: delete scope %q: %w", scopeKey, err)
	}
	return nil
}

// Exists reports whether a dataset is stored for the scope.
func (s *Store) Exists(scopeKey string) bool {
	filePath, err := s.scopeFile(scopeKey)
	if err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err = os.Stat(filePath)
	return err == nil
}

// Scopes lists the scope keys with a stored dataset, sorted.
func (s *Store) Scopes() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read store dir: %w", err)
	}
	var scopes []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if scope, ok := decodeScopeFile(entry.Name()); ok {
			scopes = append(scopes, scope)
		}
	}
	sort.Strings(scopes)
	return scopes, nil
}

// Root returns the underlying directory used for persistence.
func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) scopeFile(scopeKey string) (string, error) {
	trimmed := strings.TrimSpace(scopeKey)
	if trimmed == "" {
		return "", errors.New("dataset: scope key required")
	}
	encoded := base64.RawURLEncoding.EncodeToString([]byte(trimmed))
	return filepath.Join(s.path, fmt.Sprintf("scope_%s.json", encoded)), nil
}

func decodeScopeFile(name string) (string, bool) {
	if !strings.HasPrefix(name, "scope_") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	encoded := strings.TrimSuffix(strings.TrimPrefix(name, "scope_"), ".json")
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(data), true
}
