package namespace

import (
	"academy/access"
	"academy/account"
	"academy/authority"
	"academy/bizerror"
	"academy/common"
	"academy/domain"
	"academy/idgen"
	"academy/persistence"
	"academy/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var idWorker = idgen.NewWorker()

// QueryOrganizations lists every tenant for super admins and the own tenant for others.
// The system organization is never listed.
func QueryOrganizations(sec *session.Session) ([]domain.Organization, error) {
	if err := access.AssertRoles(sec, authority.RoleSuperAdmin, authority.RoleAdmin); err != nil {
		return nil, err
	}
	q := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Order("name ASC")
	if orgID, scoped := access.OrganizationFilter(sec); scoped {
		q = q.Where("id = ?", orgID)
	}
	var orgs []domain.Organization
	if err := q.Find(&orgs).Error; err != nil {
		return nil, err
	}
	return access.VisibleOrganizations(orgs), nil
}

func DetailOrganization(id types.ID, sec *session.Session) (*domain.Organization, error) {
	if err := access.AssertRoles(sec, authority.RoleSuperAdmin, authority.RoleAdmin); err != nil {
		return nil, err
	}
	org, err := findOrganization(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
	if err != nil {
		return nil, err
	}
	if org.IsSystemOrganization {
		return nil, bizerror.ErrNotFound
	}
	if err := access.AssertVisible(sec, org); err != nil {
		return nil, err
	}
	return org, nil
}

// CreateOrganization creates a tenant together with its standard roles and their default grants.
func CreateOrganization(c *domain.OrganizationCreation, sec *session.Session) (*domain.Organization, error) {
	if err := access.AssertRoles(sec, authority.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if err := access.AssertPermissions(sec, authority.OrganizationCreate); err != nil {
		return nil, err
	}
	slug := c.Slug
	if slug == "" {
		slug = common.Slugify(c.Name)
	}
	if len(slug) < 2 {
		return nil, bizerror.NewErrValidation("slug", "slug can not be derived from name")
	}
	if slug == domain.SystemOrganizationSlug {
		return nil, bizerror.ErrConflict
	}

	now := time.Now()
	org := domain.Organization{ID: idgen.NextID(idWorker), Name: c.Name, Slug: slug,
		IsActive: c.IsActive == nil || *c.IsActive, CreatedAt: now, UpdatedAt: now}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		var count int
		if err := tx.Model(&domain.Organization{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return bizerror.ErrConflict
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return account.SeedStandardRoles(tx, org.ID)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"organization": org.ID.String(), "slug": org.Slug, "operator": sec.Identity.ID.String()}).
		Info("organization created")
	return &org, nil
}

// UpdateOrganization changes name and activation. The slug is immutable.
func UpdateOrganization(id types.ID, u *domain.OrganizationUpdating, sec *session.Session) (*domain.Organization, error) {
	if err := access.AssertRoles(sec, authority.RoleSuperAdmin, authority.RoleAdmin); err != nil {
		return nil, err
	}
	var updated domain.Organization
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		org, err := findOrganization(tx, id)
		if err != nil {
			return err
		}
		if err := access.AssertVisible(sec, org); err != nil {
			return err
		}
		if err := access.AssertNotSystemOrganization(org); err != nil {
			return err
		}
		changes := map[string]interface{}{"name": u.Name, "updated_at": time.Now()}
		if u.IsActive != nil {
			changes["is_active"] = *u.IsActive
		}
		if err := tx.Model(&domain.Organization{}).Where("id = ?", org.ID).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", org.ID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteOrganization removes the tenant and everything it owns. The system organization can not be deleted.
func DeleteOrganization(id types.ID, sec *session.Session) error {
	if err := access.AssertRoles(sec, authority.RoleSuperAdmin); err != nil {
		return err
	}
	if err := access.AssertPermissions(sec, authority.OrganizationDelete); err != nil {
		return err
	}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		org, err := findOrganization(tx, id)
		if err != nil {
			return err
		}
		if err := access.AssertNotSystemOrganization(org); err != nil {
			return err
		}
		return cascadeDelete(tx, org.ID)
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"organization": id.String(), "operator": sec.Identity.ID.String()}).Info("organization deleted")
	return nil
}

func cascadeDelete(tx *gorm.DB, orgID types.ID) error {
	var courseIds, userIds, roleIds []types.ID
	if err := tx.Model(&domain.Course{}).Where("organization_id = ?", orgID).Pluck("id", &courseIds).Error; err != nil {
		return err
	}
	if err := tx.Model(&account.User{}).Where("organization_id = ?", orgID).Pluck("id", &userIds).Error; err != nil {
		return err
	}
	if err := tx.Model(&account.Role{}).Where("organization_id = ?", orgID).Pluck("id", &roleIds).Error; err != nil {
		return err
	}

	if len(courseIds) > 0 {
		if err := tx.Where("course_id IN (?)", courseIds).Delete(&domain.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN (?)", courseIds).Delete(&domain.Course{}).Error; err != nil {
			return err
		}
	}
	if len(userIds) > 0 {
		if err := tx.Where("user_id IN (?)", userIds).Delete(&account.UserRoleBinding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN (?)", userIds).Delete(&account.User{}).Error; err != nil {
			return err
		}
	}
	if len(roleIds) > 0 {
		if err := tx.Where("role_id IN (?)", roleIds).Delete(&account.UserRoleBinding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id IN (?)", roleIds).Delete(&account.RolePermissionBinding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN (?)", roleIds).Delete(&account.Role{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("id = ?", orgID).Delete(&domain.Organization{}).Error
}

func findOrganization(db *gorm.DB, id types.ID) (*domain.Organization, error) {
	org := domain.Organization{}
	if err := db.Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
