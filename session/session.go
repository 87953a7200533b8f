package session

import (
	"academy/authority"
	"academy/domain"
	"context"
	"time"

	"github.com/fundwit/go-commons/types"
)

// Session is the authenticated principal of a request. It is rebuilt from the token claims on
// every request and reflects the roles and permissions at token signing time.
type Session struct {
	Context context.Context `json:"-"`

	Token   string `json:"-"`
	TokenID string `json:"-"`

	Identity     Identity                      `json:"identity"`
	Roles        authority.Roles               `json:"roles"`
	Organization domain.OrganizationDescriptor `json:"organization"`
	Perms        authority.Permissions         `json:"perms"`

	SigningTime time.Time `json:"signingTime"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Identity struct {
	ID        types.ID `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
}

func (i Identity) DisplayName() string {
	name := i.FirstName
	if i.LastName != "" {
		if name != "" {
			name += " "
		}
		name += i.LastName
	}
	if name == "" {
		return i.Email
	}
	return name
}

func (s *Session) IsSuperAdmin() bool {
	return s != nil && s.Roles.Has(authority.RoleSuperAdmin)
}

func (s *Session) Clone() Session {
	c := *s
	c.Roles = append(authority.Roles{}, s.Roles...)
	c.Perms = append(authority.Permissions{}, s.Perms...)
	return c
}

// Ctx returns the request context, context.Background() when the session is detached.
func (s *Session) Ctx() context.Context {
	if s == nil || s.Context == nil {
		return context.Background()
	}
	return s.Context
}
