package account

import (
	"academy/authority"
	"academy/authtoken"
	"academy/domain"
	"academy/persistence"
	"academy/session"
	"context"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	LoadSubjectFunc = LoadSubject
)

func LoadSubjectFuncReset() {
	LoadSubjectFunc = LoadSubject
}

// Grants are the held role names and the union of their permissions.
type Grants struct {
	Roles       []string
	Permissions []string
}

// LoadGrants flattens the roles of a user into their permission union, de-duplicated and in
// catalog order. Roles do not inherit from each other.
func LoadGrants(db *gorm.DB, uid types.ID) (*Grants, error) {
	var roleIds []types.ID
	if err := db.Model(&UserRoleBinding{}).Where("user_id = ?", uid).Pluck("role_id", &roleIds).Error; err != nil {
		return nil, err
	}
	grants := &Grants{Roles: []string{}, Permissions: []string{}}
	if len(roleIds) == 0 {
		return grants, nil
	}

	var roles []Role
	if err := db.Where("id IN (?)", roleIds).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	for _, r := range roles {
		grants.Roles = append(grants.Roles, r.Name)
	}

	var perms []string
	if err := db.Model(&RolePermissionBinding{}).Where("role_id IN (?)", roleIds).Pluck("permission_id", &perms).Error; err != nil {
		return nil, err
	}
	known := make([]string, 0, len(perms))
	for _, p := range perms {
		if authority.IsKnown(p) {
			known = append(known, p)
		}
	}
	normalized, err := authority.Normalize(known)
	if err != nil {
		return nil, err
	}
	grants.Permissions = normalized
	return grants, nil
}

// LoadSubject reads the current grants and organization of the user for token issuance.
func LoadSubject(ctx context.Context, user *User) (*authtoken.Subject, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	org := domain.Organization{}
	if err := db.Where("id = ?", user.OrganizationID).First(&org).Error; err != nil {
		return nil, err
	}
	grants, err := LoadGrants(db, user.ID)
	if err != nil {
		return nil, err
	}
	return &authtoken.Subject{
		Identity:     session.Identity{ID: user.ID, Email: user.Email, FirstName: user.FirstName, LastName: user.LastName},
		Roles:        grants.Roles,
		Organization: org.Descriptor(),
		Permissions:  grants.Permissions,
	}, nil
}
