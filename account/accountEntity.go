package account

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Email    string `json:"email" gorm:"unique_index:uni_user_email" sql:"type:VARCHAR(180) NOT NULL"`
	Password string `json:"-" sql:"type:VARCHAR(255) NOT NULL"`

	FirstName string `json:"firstName" sql:"type:VARCHAR(50) NOT NULL"`
	LastName  string `json:"lastName" sql:"type:VARCHAR(50) NOT NULL"`
	IsActive  bool   `json:"isActive"`

	OrganizationID types.ID `json:"organizationId" gorm:"index:idx_user_organization" sql:"type:BIGINT UNSIGNED NOT NULL"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) TenantID() types.ID {
	return u.OrganizationID
}

func (u User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

// UserDetail is the user view returned by the api, password never included.
type UserDetail struct {
	User

	Roles []string `json:"roles"`
}

type UserCreation struct {
	Email          string   `json:"email" binding:"required,email,max=180"`
	Password       string   `json:"password" binding:"required,min=8,max=64"`
	FirstName      string   `json:"firstName" binding:"required,min=2,max=50"`
	LastName       string   `json:"lastName" binding:"required,min=2,max=50"`
	IsActive       *bool    `json:"isActive"`
	Roles          []string `json:"roles"`
	OrganizationID types.ID `json:"organizationId"`
}

type UserUpdating struct {
	Email     string    `json:"email" binding:"required,email,max=180"`
	Password  string    `json:"password" binding:"omitempty,min=8,max=64"`
	FirstName string    `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string    `json:"lastName" binding:"required,min=2,max=50"`
	IsActive  *bool     `json:"isActive"`
	Roles     *[]string `json:"roles"`
}

// Role is a named permission set owned by one organization. The super admin role is global
// and carries organization id 0.
type Role struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name        string `json:"name" gorm:"unique_index:uni_role_name_organization" sql:"type:VARCHAR(50) NOT NULL"`
	Description string `json:"description" sql:"type:VARCHAR(255)"`

	IsSystemRole   bool     `json:"isSystemRole"`
	OrganizationID types.ID `json:"organizationId" gorm:"unique_index:uni_role_name_organization" sql:"type:BIGINT UNSIGNED NOT NULL"`

	CreatedAt time.Time `json:"createdAt"`
}

func (r Role) TenantID() types.ID {
	return r.OrganizationID
}

type RoleDetail struct {
	Role

	Permissions []string `json:"permissions"`
}

type RoleCreation struct {
	Name           string   `json:"name" binding:"required,min=6,max=50,startswith=ROLE_,uppercase"`
	Description    string   `json:"description" binding:"max=255"`
	Permissions    []string `json:"permissions"`
	OrganizationID types.ID `json:"organizationId"`
}

type RolePermissionsUpdating struct {
	Permissions []string `json:"permissions" binding:"required"`
}

type Permission struct {
	ID          string `json:"id" gorm:"primary_key" sql:"type:VARCHAR(64) NOT NULL"`
	Resource    string `json:"resource" sql:"type:VARCHAR(32) NOT NULL"`
	Action      string `json:"action" sql:"type:VARCHAR(32) NOT NULL"`
	Description string `json:"description" sql:"type:VARCHAR(255)"`
}

type UserRoleBinding struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	UserID types.ID `json:"userId" gorm:"unique_index:uni_user_role" sql:"type:BIGINT UNSIGNED NOT NULL"`
	RoleID types.ID `json:"roleId" gorm:"unique_index:uni_user_role" sql:"type:BIGINT UNSIGNED NOT NULL"`
}

type RolePermissionBinding struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	RoleID       types.ID `json:"roleId" gorm:"unique_index:uni_role_perm" sql:"type:BIGINT UNSIGNED NOT NULL"`
	PermissionID string   `json:"permissionId" gorm:"unique_index:uni_role_perm" sql:"type:VARCHAR(64) NOT NULL"`
}

// Tables lists the account tables for migration.
func Tables() []interface{} {
	return []interface{}{&User{}, &Role{}, &Permission{}, &UserRoleBinding{}, &RolePermissionBinding{}}
}
