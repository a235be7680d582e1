package testutil

import (
	"encoding/base64"

	"jamsession/pkg/domain"
)

// BasicAuth encodes identifier:secret the way the login endpoint expects.
func BasicAuth(identifier, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(identifier + ":" + secret))
}

// UserBuilder provides a fluent interface for building session users.
type UserBuilder struct {
	user domain.User
}

// NewUserBuilder starts from an installer with one project.
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: domain.User{
			Username: "installer@example.com",
			Role:     domain.RoleInstaller,
			Projects: []domain.Resource{domain.StringResource("Acme Corp")},
		},
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.user.Username = username
	return b
}

func (b *UserBuilder) Admin() *UserBuilder {
	b.user.Role = domain.RoleAdmin
	return b
}

// WithProjects replaces the project list with plain-name resources.
func (b *UserBuilder) WithProjects(names ...string) *UserBuilder {
	b.user.Projects = make([]domain.Resource, 0, len(names))
	for _, n := range names {
		b.user.Projects = append(b.user.Projects, domain.StringResource(n))
	}
	return b
}

func (b *UserBuilder) Build() domain.User {
	u := b.user
	u.Projects = append([]domain.Resource{}, b.user.Projects...)
	return u
}
