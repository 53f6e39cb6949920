// Package localstore is the highest-precedence override tier: a flat JSON
// file of rolePerms:{roleId} entries on local disk. Entries here shadow the
// remote store and the registry baseline until removed.
package localstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"institute-admin/internal/domain"
)

const keyPrefix = "rolePerms:"

type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// readAll tolerates a missing or corrupt file: both read as empty. Per-entry
// garbage is kept raw and skipped at decode time.
func (s *Store) readAll() map[string]json.RawMessage {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]json.RawMessage{}
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil || all == nil {
		return map[string]json.RawMessage{}
	}
	return all
}

func decodePerms(raw json.RawMessage) (domain.RolePermissions, bool) {
	var perms domain.RolePermissions
	if err := json.Unmarshal(raw, &perms); err != nil || perms == nil {
		return nil, false
	}
	return perms, true
}

func (s *Store) Get(_ context.Context, roleID string) (domain.RolePermissions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.readAll()[keyPrefix+roleID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	perms, ok := decodePerms(raw)
	if !ok {
		// malformed entry reads as absent
		return nil, domain.ErrNotFound
	}
	return perms, nil
}

func (s *Store) Put(_ context.Context, roleID string, perms domain.RolePermissions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.readAll()
	encoded, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	all[keyPrefix+roleID] = encoded
	out, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, out, 0o644)
}

func (s *Store) All(_ context.Context) (map[string]domain.RolePermissions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]domain.RolePermissions{}
	for key, raw := range s.readAll() {
		if len(key) <= len(keyPrefix) || key[:len(keyPrefix)] != keyPrefix {
			continue
		}
		if perms, ok := decodePerms(raw); ok {
			out[key[len(keyPrefix):]] = perms
		}
	}
	return out, nil
}
