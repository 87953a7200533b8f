package authority

import (
	"errors"
	"strings"
)

var ErrUnknownPermission = errors.New("permission not found")

const (
	ResourceOrganization = "organization"
	ResourceCourse       = "course"
	ResourceLesson       = "lesson"
	ResourceEnrollment   = "enrollment"
	ResourceUser         = "user"
	ResourceRole         = "role"
)

const (
	OrganizationView   = "organization:view"
	OrganizationCreate = "organization:create"
	OrganizationEdit   = "organization:edit"
	OrganizationDelete = "organization:delete"

	CourseView    = "course:view"
	CourseCreate  = "course:create"
	CourseEdit    = "course:edit"
	CourseDelete  = "course:delete"
	CoursePublish = "course:publish"

	LessonView   = "lesson:view"
	LessonCreate = "lesson:create"
	LessonEdit   = "lesson:edit"
	LessonDelete = "lesson:delete"

	EnrollmentView   = "enrollment:view"
	EnrollmentCreate = "enrollment:create"
	EnrollmentManage = "enrollment:manage"

	UserView   = "user:view"
	UserCreate = "user:create"
	UserEdit   = "user:edit"
	UserDelete = "user:delete"

	RoleView   = "role:view"
	RoleManage = "role:manage"
)

// PermissionSpec describes one catalog entry.
type PermissionSpec struct {
	ID          string `json:"id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var catalog = []PermissionSpec{
	{ID: OrganizationView, Label: "View Organizations", Description: "View organizations"},
	{ID: OrganizationCreate, Label: "Create Organizations", Description: "Create organizations"},
	{ID: OrganizationEdit, Label: "Edit Organizations", Description: "Edit organizations"},
	{ID: OrganizationDelete, Label: "Delete Organizations", Description: "Delete organizations"},

	{ID: CourseView, Label: "View Courses", Description: "View courses"},
	{ID: CourseCreate, Label: "Create Courses", Description: "Create courses"},
	{ID: CourseEdit, Label: "Edit Courses", Description: "Edit courses"},
	{ID: CourseDelete, Label: "Delete Courses", Description: "Delete courses"},
	{ID: CoursePublish, Label: "Publish Courses", Description: "Publish courses"},

	{ID: LessonView, Label: "View Lessons", Description: "View lessons"},
	{ID: LessonCreate, Label: "Create Lessons", Description: "Create lessons"},
	{ID: LessonEdit, Label: "Edit Lessons", Description: "Edit lessons"},
	{ID: LessonDelete, Label: "Delete Lessons", Description: "Delete lessons"},

	{ID: EnrollmentView, Label: "View Enrollments", Description: "View enrollments"},
	{ID: EnrollmentCreate, Label: "Create Enrollments", Description: "Enroll in courses"},
	{ID: EnrollmentManage, Label: "Manage Enrollments", Description: "Manage enrollments"},

	{ID: UserView, Label: "View Users", Description: "View users"},
	{ID: UserCreate, Label: "Create Users", Description: "Create users"},
	{ID: UserEdit, Label: "Edit Users", Description: "Edit users"},
	{ID: UserDelete, Label: "Delete Users", Description: "Delete users"},

	{ID: RoleView, Label: "View Roles", Description: "View roles"},
	{ID: RoleManage, Label: "Manage Roles", Description: "Manage roles and their permissions"},
}

var catalogIndex = map[string]int{}

func init() {
	for i := range catalog {
		resource, action := split(catalog[i].ID)
		catalog[i].Resource = resource
		catalog[i].Action = action
		catalogIndex[catalog[i].ID] = i
	}
}

func split(id string) (string, string) {
	idx := strings.Index(id, ":")
	if idx < 0 {
		return id, ""
	}
	return id[:idx], id[idx+1:]
}

// Values returns every permission id in catalog order.
func Values() []string {
	ids := make([]string, 0, len(catalog))
	for _, p := range catalog {
		ids = append(ids, p.ID)
	}
	return ids
}

// Specs returns a copy of the catalog.
func Specs() []PermissionSpec {
	return append([]PermissionSpec{}, catalog...)
}

func IsKnown(id string) bool {
	_, found := catalogIndex[id]
	return found
}

func Lookup(id string) (PermissionSpec, error) {
	idx, found := catalogIndex[id]
	if !found {
		return PermissionSpec{}, ErrUnknownPermission
	}
	return catalog[idx], nil
}

func ResourceOf(id string) (string, error) {
	p, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return p.Resource, nil
}

func ActionOf(id string) (string, error) {
	p, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return p.Action, nil
}

func Describe(id string) (string, error) {
	p, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return p.Description, nil
}

// ByResource returns the ids of one resource in catalog order, empty for unknown resources.
func ByResource(resource string) []string {
	ids := []string{}
	for _, p := range catalog {
		if p.Resource == resource {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func GroupedByResource() map[string][]string {
	groups := map[string][]string{}
	for _, p := range catalog {
		groups[p.Resource] = append(groups[p.Resource], p.ID)
	}
	return groups
}

// Normalize de-duplicates ids and orders them by catalog position. Unknown ids are rejected.
func Normalize(ids []string) ([]string, error) {
	seen := make([]bool, len(catalog))
	for _, id := range ids {
		idx, found := catalogIndex[id]
		if !found {
			return nil, ErrUnknownPermission
		}
		seen[idx] = true
	}
	result := []string{}
	for i, s := range seen {
		if s {
			result = append(result, catalog[i].ID)
		}
	}
	return result, nil
}
