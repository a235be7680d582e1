package sessionguard

import (
	"strings"
	"time"

	"jamsession/pkg/domain"
)

func (g *Guard) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user != nil
}

// IsAdmin reports whether the server-verified role is exactly admin.
func (g *Guard) IsAdmin() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user != nil && g.user.Role.IsAdmin()
}

// User returns a copy of the cached user, or nil when signed out.
func (g *Guard) User() *domain.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return nil
	}
	u := *g.user
	u.Projects = append([]domain.Resource(nil), g.user.Projects...)
	return &u
}

func (g *Guard) Username() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return ""
	}
	return g.user.Username
}

func (g *Guard) Role() domain.Role {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return ""
	}
	return g.user.Role
}

// Projects returns the authorized resource descriptors; never nil.
func (g *Guard) Projects() []domain.Resource {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return []domain.Resource{}
	}
	return append([]domain.Resource{}, g.user.Projects...)
}

func (g *Guard) ProjectNames() []string {
	return domain.ResourceNames(g.Projects())
}

// HasResourceAccess matches name against the authorized project names,
// case-insensitively and in either direction, so "acme" and
// "Acme Corp West" both match "Acme Corp". Admins and empty names always
// pass; a user with no authorized projects never does.
func (g *Guard) HasResourceAccess(name string) bool {
	if g.IsAdmin() || name == "" {
		return true
	}
	authorized := g.ProjectNames()
	if len(authorized) == 0 {
		return false
	}
	query := strings.ToLower(name)
	for _, n := range authorized {
		candidate := strings.ToLower(n)
		if strings.Contains(candidate, query) || strings.Contains(query, candidate) {
			return true
		}
	}
	return false
}

func (g *Guard) CSRFToken() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.csrfToken
}

// ExpiresAt is the session expiry reported by the server, zero when signed out.
func (g *Guard) ExpiresAt() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.expiresAt
}

func (g *Guard) IsInitialized() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.initialized
}
