// Package scope models record ownership as an explicit tagged value
// instead of nullable foreign keys, so "platform-owned" is a deliberate
// variant rather than an absent reference.
package scope

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind identifies the owner class of a record.
type Kind string

// Kind values for record ownership.
const (
	// KindPlatform marks a record shared by the whole platform.
	KindPlatform Kind = "platform"
	// KindUser marks a record owned by a single user.
	KindUser Kind = "user"
	// KindTeam marks a record owned by a team.
	KindTeam Kind = "team"
)

// Scope is an ownership tag: the platform, a user, or a team.
type Scope struct {
	kind Kind
	id   string
}

// Platform returns the shared platform scope.
func Platform() Scope { return Scope{kind: KindPlatform} }

// ForUser returns a scope owned by the given user.
func ForUser(userID string) Scope {
	return Scope{kind: KindUser, id: strings.TrimSpace(userID)}
}

// ForTeam returns a scope owned by the given team.
func ForTeam(teamID string) Scope {
	return Scope{kind: KindTeam, id: strings.TrimSpace(teamID)}
}

// Parse builds a scope from its string form. An empty kind means the
// platform scope.
func Parse(kind, ownerID string) (Scope, error) {
	switch Kind(strings.TrimSpace(strings.ToLower(kind))) {
	case KindPlatform, "":
		return Platform(), nil
	case KindUser:
		s := ForUser(ownerID)
		return s, s.Validate()
	case KindTeam:
		s := ForTeam(ownerID)
		return s, s.Validate()
	default:
		return Scope{}, fmt.Errorf("scope: unknown scope type %q", kind)
	}
}

// Kind returns the owner class.
func (s Scope) Kind() Kind {
	if s.kind == "" {
		return KindPlatform
	}
	return s.kind
}

// OwnerID returns the owning user or team ID; empty for the platform.
func (s Scope) OwnerID() string { return s.id }

// IsPlatform reports whether the scope is the shared platform.
func (s Scope) IsPlatform() bool { return s.Kind() == KindPlatform }

// Validate rejects user and team scopes without an owner ID.
func (s Scope) Validate() error {
	if s.Kind() != KindPlatform && s.id == "" {
		return fmt.Errorf("scope: %s scope requires an owner id", s.Kind())
	}
	return nil
}

// String renders the scope for logs.
func (s Scope) String() string {
	if s.IsPlatform() {
		return string(KindPlatform)
	}
	return fmt.Sprintf("%s:%s", s.Kind(), s.id)
}

// Apply filters a query to records owned by the scope.
func (s Scope) Apply(q *gorm.DB) *gorm.DB {
	return q.Where("scope_type = ? AND scope_id = ?", string(s.Kind()), s.id)
}
