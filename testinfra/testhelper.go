package testinfra

import (
	"academy/authority"
	"academy/domain"
	"academy/session"

	"github.com/fundwit/go-commons/types"
)

// BuildSession builds an authenticated session of a user in the organization, holding the
// roles and their default permissions.
func BuildSession(uid, orgID types.ID, roles ...string) *session.Session {
	var perms []string
	for _, r := range roles {
		p, err := authority.DefaultPermissions(r)
		if err != nil {
			continue
		}
		perms = append(perms, p...)
	}
	perms, _ = authority.Normalize(perms)
	return &session.Session{
		Token:        "token-" + uid.String(),
		TokenID:      "jti-" + uid.String(),
		Identity:     session.Identity{ID: uid, Email: "user" + uid.String() + "@test.local"},
		Roles:        roles,
		Organization: domain.OrganizationDescriptor{ID: orgID, Slug: "org-" + orgID.String(), Name: "org " + orgID.String()},
		Perms:        perms,
	}
}

// BuildSuperAdminSession builds a super admin session of the system organization.
func BuildSuperAdminSession(uid, systemOrgID types.ID) *session.Session {
	return BuildSession(uid, systemOrgID, authority.RoleSuperAdmin)
}
