// Package access decides whether a principal may act. Every check takes the principal
// explicitly and has no side effects besides decision metrics.
package access

import (
	"academy/bizerror"
	"academy/domain"
	"academy/infra/metrics"
	"academy/session"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// TenantScoped is implemented by every resource owned by exactly one organization.
type TenantScoped interface {
	TenantID() types.ID
}

func IsSuperAdmin(sec *session.Session) bool {
	return sec.IsSuperAdmin()
}

func HasAnyRole(sec *session.Session, roles ...string) bool {
	return sec != nil && sec.Roles.HasAny(roles...)
}

func HasAllPermissions(sec *session.Session, perms ...string) bool {
	return sec != nil && sec.Perms.HasAll(perms...)
}

// AssertRoles is the role gate: the principal must hold at least one of the roles.
func AssertRoles(sec *session.Session, roles ...string) error {
	if sec == nil {
		return bizerror.ErrUnauthenticated
	}
	allowed := HasAnyRole(sec, roles...)
	metrics.ObserveAccessDecision("role", allowed)
	if !allowed {
		return bizerror.ErrForbidden
	}
	return nil
}

// AssertPermissions is the permission gate over the token snapshot: every permission is required.
func AssertPermissions(sec *session.Session, perms ...string) error {
	if sec == nil {
		return bizerror.ErrUnauthenticated
	}
	allowed := HasAllPermissions(sec, perms...)
	metrics.ObserveAccessDecision("permission", allowed)
	if !allowed {
		return bizerror.ErrForbidden
	}
	return nil
}

// AssertSameOrganization is the tenant scoping check, bypassed by super admins.
func AssertSameOrganization(sec *session.Session, target TenantScoped) error {
	if sec == nil {
		return bizerror.ErrUnauthenticated
	}
	if sec.IsSuperAdmin() {
		metrics.ObserveAccessDecision("tenant", true)
		return nil
	}
	allowed := target != nil && sec.Organization.ID != 0 && target.TenantID() == sec.Organization.ID
	metrics.ObserveAccessDecision("tenant", allowed)
	if !allowed {
		return bizerror.ErrForbidden
	}
	return nil
}

// AssertVisible is AssertSameOrganization for single resource lookups: a foreign resource is
// reported as absent so that its existence is not disclosed.
func AssertVisible(sec *session.Session, target TenantScoped) error {
	err := AssertSameOrganization(sec, target)
	if errors.Is(err, bizerror.ErrForbidden) {
		return bizerror.ErrNotFound
	}
	return err
}

func AssertNotSystemOrganization(org *domain.Organization) error {
	if org != nil && org.IsSystemOrganization {
		return bizerror.ErrForbidden
	}
	return nil
}

// OrganizationFilter returns the organization a listing must be restricted to. ok is false for
// super admins, whose listings are not restricted.
func OrganizationFilter(sec *session.Session) (id types.ID, ok bool) {
	if sec.IsSuperAdmin() {
		return 0, false
	}
	return sec.Organization.ID, true
}

// VisibleOrganizations drops the system organization, which never appears in listings.
func VisibleOrganizations(orgs []domain.Organization) []domain.Organization {
	result := []domain.Organization{}
	for _, o := range orgs {
		if !o.IsSystemOrganization {
			result = append(result, o)
		}
	}
	return result
}

// RequireRoles applies the role gate before the handler runs.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := AssertRoles(session.FindSession(c), roles...); err != nil {
			panic(err)
		}
		c.Next()
	}
}

// RequirePermissions applies the permission gate before the handler runs.
func RequirePermissions(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := AssertPermissions(session.FindSession(c), perms...); err != nil {
			panic(err)
		}
		c.Next()
	}
}
