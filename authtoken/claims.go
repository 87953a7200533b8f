package authtoken

import (
	"academy/domain"
	"academy/session"

	"github.com/fundwit/go-commons/types"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: identity, held role names, organization and the flattened permissions.
type Claims struct {
	UserID      types.ID                      `json:"uid"`
	Email       string                        `json:"email"`
	FirstName   string                        `json:"firstName"`
	LastName    string                        `json:"lastName"`
	Roles       []string                      `json:"roles"`
	Org         domain.OrganizationDescriptor `json:"org"`
	Permissions []string                      `json:"permissions"`

	jwt.RegisteredClaims
}

// Subject is everything the issuer needs to know about a principal.
type Subject struct {
	Identity     session.Identity
	Roles        []string
	Organization domain.OrganizationDescriptor
	Permissions  []string
}

// ToSession builds the request principal from verified claims, without consulting storage.
func (c *Claims) ToSession(token string) *session.Session {
	s := &session.Session{
		Token:   token,
		TokenID: c.ID,
		Identity: session.Identity{
			ID: c.UserID, Email: c.Email, FirstName: c.FirstName, LastName: c.LastName,
		},
		Roles:        append([]string{}, c.Roles...),
		Organization: c.Org,
		Perms:        append([]string{}, c.Permissions...),
	}
	if c.IssuedAt != nil {
		s.SigningTime = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return s
}
