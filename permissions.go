package identity

import (
	"strings"
	"time"
)

// Permission is a bit-set of atomic capabilities. Composite permissions are
// literal unions of their constituents; they are never stored with extra or
// missing bits because they are defined by OR-ing the atoms below.
type Permission uint16

const (
	// PermissionNone grants nothing.
	PermissionNone Permission = 0
	// PermissionFetch allows reading a single resource.
	PermissionFetch Permission = 1 << 0
	// PermissionList allows enumerating resources.
	PermissionList Permission = 1 << 1
	// PermissionNotify allows subscribing to change notifications.
	PermissionNotify Permission = 1 << 2
	// PermissionCreate allows creating resources.
	PermissionCreate Permission = 1 << 3
	// PermissionModify allows mutating existing resources.
	PermissionModify Permission = 1 << 4
	// PermissionCustom1 and PermissionCustom2 are reserved for deployments.
	PermissionCustom1 Permission = 1 << 5
	PermissionCustom2 Permission = 1 << 6
)

const (
	// PermissionRead bundles the non-mutating capabilities.
	PermissionRead = PermissionFetch | PermissionList | PermissionNotify
	// PermissionWrite bundles mutation on top of read.
	PermissionWrite = PermissionCreate | PermissionModify | PermissionRead
	// PermissionRoot grants everything including the custom bits.
	PermissionRoot = PermissionWrite | PermissionCustom1 | PermissionCustom2
)

// Has reports whether p contains every bit of q.
func (p Permission) Has(q Permission) bool {
	return p&q == q
}

// String renders the atomic bits present in p.
func (p Permission) String() string {
	if p == PermissionNone {
		return "none"
	}

	names := []struct {
		bit  Permission
		name string
	}{
		{PermissionFetch, "fetch"},
		{PermissionList, "list"},
		{PermissionNotify, "notify"},
		{PermissionCreate, "create"},
		{PermissionModify, "modify"},
		{PermissionCustom1, "custom1"},
		{PermissionCustom2, "custom2"},
	}

	parts := make([]string, 0, len(names))
	for _, n := range names {
		if p.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ACL pairs a permission bit-set with the principals (users or groups) it is
// granted to.
type ACL struct {
	Permission Permission      `json:"permission"`
	Principals map[string]bool `json:"principals"`
}

// AccessControlStore is the ordered list of ACL entries owned by a resource.
// A subject's effective permission is the bitwise union of every entry whose
// principal set contains the subject or one of its groups. There is no deny
// entry type: access is purely additive.
type AccessControlStore struct {
	ACLs         []ACL     `json:"acls"`
	LastModified time.Time `json:"last_mod_date"`

	now func() time.Time
}

// AccessStoreOption customizes a new store.
type AccessStoreOption func(*AccessControlStore)

// WithAccessClock injects a custom clock (useful for tests).
func WithAccessClock(clock func() time.Time) AccessStoreOption {
	return func(s *AccessControlStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewAccessControlStore creates an empty store.
func NewAccessControlStore(opts ...AccessStoreOption) *AccessControlStore {
	s := &AccessControlStore{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Effective returns the union of every ACL entry matching the subject or any
// of its groups, PermissionNone when nothing matches.
func (s *AccessControlStore) Effective(subject string, groups []string) Permission {
	if s == nil {
		return PermissionNone
	}

	effective := PermissionNone
	for _, acl := range s.ACLs {
		if acl.Principals[subject] {
			effective |= acl.Permission
			continue
		}
		for _, g := range groups {
			if acl.Principals[g] {
				effective |= acl.Permission
				break
			}
		}
	}
	return effective
}

// Grant adds the permission for the given principals. Entries carrying the
// identical bit-set are merged so repeated grants stay idempotent.
func (s *AccessControlStore) Grant(perm Permission, principals ...string) {
	if perm == PermissionNone || len(principals) == 0 {
		return
	}

	for i := range s.ACLs {
		if s.ACLs[i].Permission == perm {
			for _, p := range principals {
				s.ACLs[i].Principals[p] = true
			}
			s.touch()
			return
		}
	}

	set := make(map[string]bool, len(principals))
	for _, p := range principals {
		set[p] = true
	}
	s.ACLs = append(s.ACLs, ACL{Permission: perm, Principals: set})
	s.touch()
}

// Revoke removes exactly the requested bits for the given principals. When an
// entry grants more than the revoked bits, the principal keeps the leftover
// bits through a replacement entry; entries left without principals are
// dropped.
func (s *AccessControlStore) Revoke(perm Permission, principals ...string) {
	if perm == PermissionNone || len(principals) == 0 {
		return
	}

	leftovers := map[Permission][]string{}
	changed := false

	for i := range s.ACLs {
		if s.ACLs[i].Permission&perm == 0 {
			continue
		}
		remainder := s.ACLs[i].Permission &^ perm
		for _, p := range principals {
			if !s.ACLs[i].Principals[p] {
				continue
			}
			delete(s.ACLs[i].Principals, p)
			changed = true
			if remainder != PermissionNone {
				leftovers[remainder] = append(leftovers[remainder], p)
			}
		}
	}

	kept := s.ACLs[:0]
	for _, acl := range s.ACLs {
		if len(acl.Principals) > 0 {
			kept = append(kept, acl)
		}
	}
	s.ACLs = kept

	for remainder, ps := range leftovers {
		s.Grant(remainder, ps...)
	}

	if changed {
		s.touch()
	}
}

// Clone returns a deep copy sharing no maps or slices with the receiver.
func (s *AccessControlStore) Clone() *AccessControlStore {
	if s == nil {
		return nil
	}

	out := &AccessControlStore{
		LastModified: s.LastModified,
		now:          s.now,
	}
	if s.ACLs != nil {
		out.ACLs = make([]ACL, 0, len(s.ACLs))
		for _, acl := range s.ACLs {
			set := make(map[string]bool, len(acl.Principals))
			for p, ok := range acl.Principals {
				set[p] = ok
			}
			out.ACLs = append(out.ACLs, ACL{Permission: acl.Permission, Principals: set})
		}
	}
	return out
}

func (s *AccessControlStore) touch() {
	clock := s.now
	if clock == nil {
		// Stores rebuilt from persisted documents have no injected clock.
		clock = time.Now
	}
	s.LastModified = clock()
}
