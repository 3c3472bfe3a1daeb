package memstore

import (
	"github.com/helmspoke/go-identity"
)

func cloneUser(u *identity.User) *identity.User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Metadata != nil {
		out.Metadata = make(map[string]any, len(u.Metadata))
		for k, v := range u.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

func cloneGroup(g *identity.Group) *identity.Group {
	if g == nil {
		return nil
	}
	out := *g
	if g.Members != nil {
		out.Members = make(map[string]bool, len(g.Members))
		for k, v := range g.Members {
			out.Members[k] = v
		}
	}
	return &out
}

func cloneProject(p *identity.Project) *identity.Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Access = p.Access.Clone()
	return &out
}

func cloneTicket(t *identity.Ticket) *identity.Ticket {
	if t == nil {
		return nil
	}
	out := *t
	if t.Mentions != nil {
		out.Mentions = append([]string(nil), t.Mentions...)
	}
	out.Access = t.Access.Clone()
	return &out
}
