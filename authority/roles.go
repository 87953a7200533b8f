package authority

import "errors"

var ErrUnknownRole = errors.New("role not found")

const (
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
	RoleAdmin      = "ROLE_ADMIN"
	RoleInstructor = "ROLE_INSTRUCTOR"
	RoleStudent    = "ROLE_STUDENT"
	RoleGuest      = "ROLE_GUEST"
)

var roleDescriptions = map[string]string{
	RoleSuperAdmin: "Super Administrator",
	RoleAdmin:      "Administrator",
	RoleInstructor: "Instructor",
	RoleStudent:    "Student",
	RoleGuest:      "Guest",
}

// KnownRoles lists the built-in role names from most to least privileged.
func KnownRoles() []string {
	return []string{RoleSuperAdmin, RoleAdmin, RoleInstructor, RoleStudent, RoleGuest}
}

// StandardRoles are seeded into every tenant organization.
func StandardRoles() []string {
	return []string{RoleAdmin, RoleInstructor, RoleStudent}
}

func RoleDescription(name string) string {
	if d, found := roleDescriptions[name]; found {
		return d
	}
	return name
}

// DefaultPermissions is the provisioning time grant set of a built-in role.
// Runtime grants live in storage and may diverge from it.
func DefaultPermissions(role string) ([]string, error) {
	switch role {
	case RoleSuperAdmin:
		return Values(), nil
	case RoleAdmin:
		var perms []string
		for _, p := range catalog {
			if p.Resource != ResourceOrganization {
				perms = append(perms, p.ID)
			}
		}
		return perms, nil
	case RoleInstructor:
		perms := append(ByResource(ResourceCourse), ByResource(ResourceLesson)...)
		return append(perms, EnrollmentView, EnrollmentCreate, UserView), nil
	case RoleStudent:
		return []string{CourseView, LessonView, EnrollmentView, EnrollmentCreate}, nil
	case RoleGuest:
		return []string{CourseView}, nil
	}
	return nil, ErrUnknownRole
}

// Permissions is a flattened permission snapshot.
type Permissions []string

func (c Permissions) Has(perm string) bool {
	for _, v := range c {
		if v == perm {
			return true
		}
	}
	return false
}

func (c Permissions) HasAll(perms ...string) bool {
	for _, p := range perms {
		if !c.Has(p) {
			return false
		}
	}
	return true
}

// Roles is the set of role names held by a principal.
type Roles []string

func (r Roles) Has(role string) bool {
	for _, v := range r {
		if v == role {
			return true
		}
	}
	return false
}

func (r Roles) HasAny(roles ...string) bool {
	for _, role := range roles {
		if r.Has(role) {
			return true
		}
	}
	return false
}
