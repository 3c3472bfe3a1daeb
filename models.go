package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticatable principal. The username is the natural key,
// case-normalized at registration and immutable afterwards.
type User struct {
	Username     string         `json:"username"`
	PasswordHash string         `json:"-"`
	CreatedAt    time.Time      `json:"created_at,omitempty"`
	CreatedBy    string         `json:"created_by,omitempty"`
	Deactivated  bool           `json:"deactivated,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// AddMetadata appends information to the metadata attribute.
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// Group is an access-control subject only; groups never authenticate.
type Group struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name,omitempty"`
	Members map[string]bool `json:"members,omitempty"`
}

// AddMember records a principal identifier as a member.
func (g *Group) AddMember(principal string) *Group {
	if g.Members == nil {
		g.Members = make(map[string]bool)
	}
	g.Members[principal] = true
	return g
}

// HasMember reports whether the principal belongs to the group.
func (g *Group) HasMember(principal string) bool {
	return g.Members[principal]
}

// Project owns an access-control store; tickets grouped under it inherit
// nothing implicitly, every check goes through the owning store.
type Project struct {
	ID     uuid.UUID           `json:"id"`
	Name   string              `json:"name,omitempty"`
	Access *AccessControlStore `json:"access,omitempty"`
}

// Severity grades a ticket.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the lowercase label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Ticket is a work item subject to its owning project's access control.
type Ticket struct {
	ID       uuid.UUID           `json:"id"`
	Project  uuid.UUID           `json:"project,omitempty"`
	Title    string              `json:"title,omitempty"`
	Body     string              `json:"body,omitempty"`
	Severity Severity            `json:"severity,omitempty"`
	Creator  string              `json:"creator,omitempty"`
	Assignee string              `json:"assignee,omitempty"`
	Mentions []string            `json:"mentions,omitempty"`
	Access   *AccessControlStore `json:"access,omitempty"`
}
