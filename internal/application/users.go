package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"institute-admin/internal/domain"
	"institute-admin/internal/ports"
)

// UserService keeps the user-to-role directory and pushes role claims to
// the identity provider on assignment. The directory is seed data plus
// in-process mutations; only the roleId field ever changes.
type UserService struct {
	mu       sync.RWMutex
	order    []string
	users    map[string]domain.UserRecord
	registry *RoleRegistry
	claims   ports.ClaimSetter
	audit    ports.AuditRepository
	logger   ports.Logger
}

func NewUserService(seed []domain.UserRecord, registry *RoleRegistry, claims ports.ClaimSetter, audit ports.AuditRepository, logger ports.Logger) *UserService {
	s := &UserService{
		users:    make(map[string]domain.UserRecord, len(seed)),
		registry: registry,
		claims:   claims,
		audit:    audit,
		logger:   logger,
	}
	for _, u := range seed {
		if _, dup := s.users[u.ID]; dup {
			continue
		}
		s.order = append(s.order, u.ID)
		s.users[u.ID] = u
	}
	return s
}

func (s *UserService) ListUsers() []domain.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id])
	}
	return out
}

func (s *UserService) FindUser(id string) (domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	return u, nil
}

// CoarseClaimFor maps a role id to the two-value claim the identity
// provider stores alongside it.
func CoarseClaimFor(roleID string) string {
	r := strings.ToLower(roleID)
	if r == domain.CoarseOwner || r == "admin" ||
		strings.Contains(r, "role-owner") || strings.Contains(r, "role-admin") {
		return domain.CoarseOwner
	}
	return domain.CoarseLimited
}

type AssignResult struct {
	User         domain.UserRecord `json:"user"`
	AppliedClaim string            `json:"appliedClaim,omitempty"`
	ClaimError   string            `json:"claimError,omitempty"`
}

// AssignRole updates the local mapping and audits it, then pushes the claim
// to the identity provider when the user has an email. A failed push is
// surfaced in the result but the local mapping stays — the two sides may
// diverge until the next successful call.
func (s *UserService) AssignRole(ctx context.Context, userID, roleID, callerToken, actor string) (AssignResult, error) {
	if userID == "" || roleID == "" {
		return AssignResult{}, domain.ErrInvalidInput
	}
	if _, err := s.registry.FindRole(roleID); err != nil {
		return AssignResult{}, err
	}

	s.mu.Lock()
	u, ok := s.users[userID]
	if !ok {
		s.mu.Unlock()
		return AssignResult{}, domain.ErrNotFound
	}
	u.RoleID = roleID
	s.users[userID] = u
	s.mu.Unlock()

	entry := domain.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		User:      actor,
		Action:    "Assigned role",
		Details:   u.Name + " -> " + roleID,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error(ctx, "audit append failed", "user_id", userID, "error", err)
	}

	result := AssignResult{User: u}
	if u.Email != "" {
		claim := CoarseClaimFor(roleID)
		if err := s.claims.SetRoleClaims(ctx, callerToken, u.Email, claim, roleID); err != nil {
			s.logger.Warn(ctx, "role claim push failed", "email", u.Email, "error", err)
			result.ClaimError = err.Error()
		} else {
			result.AppliedClaim = claim
		}
	}
	return result, nil
}
