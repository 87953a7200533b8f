package account

import (
	"academy/authority"
	"academy/bizerror"
	"academy/common"
	"academy/domain"
	"academy/idgen"
	"academy/persistence"
	"context"
	"errors"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const SuperAdminEmail = "super@system.local"

type ProvisionConfig struct {
	SuperAdminPassword string
	Demo               bool
}

// ProvisionConfigFromEnv reads INITIAL_SUPER_ADMIN_PASSWORD and PROVISION_DEMO.
func ProvisionConfigFromEnv() ProvisionConfig {
	return ProvisionConfig{
		SuperAdminPassword: common.EnvString("INITIAL_SUPER_ADMIN_PASSWORD", "SuperSecret123!"),
		Demo:               common.EnvBool("PROVISION_DEMO", true),
	}
}

type demoUser struct {
	email, password, firstName, lastName, role string
}

var demoUsers = []demoUser{
	{email: "admin@demo.com", password: "admin123", firstName: "John", lastName: "Admin", role: authority.RoleAdmin},
	{email: "instructor@demo.com", password: "instructor123", firstName: "Jane", lastName: "Instructor", role: authority.RoleInstructor},
	{email: "student@demo.com", password: "student123", firstName: "Bob", lastName: "Student", role: authority.RoleStudent},
}

// Provision installs the permission catalog, the system organization with the global super admin
// role and account and, optionally, a demo organization. Running it again changes nothing but
// missing records and the super admin grants.
func Provision(ctx context.Context, config ProvisionConfig) error {
	return persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		for _, spec := range authority.Specs() {
			p := Permission{ID: spec.ID, Resource: spec.Resource, Action: spec.Action, Description: spec.Description}
			if err := tx.Save(&p).Error; err != nil {
				return err
			}
		}

		system, err := ensureOrganization(tx, "System", domain.SystemOrganizationSlug, true)
		if err != nil {
			return err
		}
		superRole, err := ensureSuperAdminRole(tx)
		if err != nil {
			return err
		}
		if err := ensureUser(tx, system.ID, SuperAdminEmail, config.SuperAdminPassword, "Super", "Admin", superRole); err != nil {
			return err
		}

		if !config.Demo {
			return nil
		}
		demo, err := ensureOrganization(tx, "Demo University", "demo-university", false)
		if err != nil {
			return err
		}
		if err := SeedStandardRoles(tx, demo.ID); err != nil {
			return err
		}
		for _, u := range demoUsers {
			role, err := FindOrganizationRole(tx, demo.ID, u.role)
			if err != nil {
				return err
			}
			if err := ensureUser(tx, demo.ID, u.email, u.password, u.firstName, u.lastName, role); err != nil {
				return err
			}
		}
		logrus.Info("demo organization provisioned")
		return nil
	})
}

func ensureOrganization(tx *gorm.DB, name, slug string, system bool) (*domain.Organization, error) {
	org := domain.Organization{}
	err := tx.Where("slug = ?", slug).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := time.Now()
	org = domain.Organization{ID: idgen.NextID(userIdWorker), Name: name, Slug: slug, IsActive: true,
		IsSystemOrganization: system, CreatedAt: now, UpdatedAt: now}
	if err := tx.Create(&org).Error; err != nil {
		return nil, err
	}
	logrus.WithField("slug", slug).Info("organization provisioned")
	return &org, nil
}

func ensureSuperAdminRole(tx *gorm.DB) (*Role, error) {
	role, err := FindOrganizationRole(tx, 0, authority.RoleSuperAdmin)
	if err != nil && !errors.Is(err, bizerror.ErrRoleNotFound) {
		return nil, err
	}
	if role == nil {
		role = &Role{ID: idgen.NextID(roleIdWorker), Name: authority.RoleSuperAdmin,
			Description: authority.RoleDescription(authority.RoleSuperAdmin), IsSystemRole: true, CreatedAt: time.Now()}
		if err := tx.Create(role).Error; err != nil {
			return nil, err
		}
	}

	var granted []string
	if err := tx.Model(&RolePermissionBinding{}).Where("role_id = ?", role.ID).Pluck("permission_id", &granted).Error; err != nil {
		return nil, err
	}
	var missing []string
	for _, p := range authority.Values() {
		if !authority.Permissions(granted).Has(p) {
			missing = append(missing, p)
		}
	}
	if err := bindPermissions(tx, role.ID, missing); err != nil {
		return nil, err
	}
	return role, nil
}

func ensureUser(tx *gorm.DB, orgID types.ID, email, password, firstName, lastName string, role *Role) error {
	user := User{}
	err := tx.Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hashed, err := HashPassword(password)
		if err != nil {
			return err
		}
		now := time.Now()
		user = User{ID: idgen.NextID(userIdWorker), Email: email, Password: hashed, FirstName: firstName, LastName: lastName,
			IsActive: true, OrganizationID: orgID, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		logrus.WithField("email", email).Info("account provisioned")
	}

	var count int
	if err := tx.Model(&UserRoleBinding{}).Where("user_id = ? AND role_id = ?", user.ID, role.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		_, err := bindRoles(tx, user.ID, []Role{*role})
		return err
	}
	return nil
}
