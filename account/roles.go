package account

import (
	"academy/access"
	"academy/authority"
	"academy/bizerror"
	"academy/idgen"
	"academy/persistence"
	"academy/session"
	"errors"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var roleIdWorker = idgen.NewWorker()

type RoleQuery struct {
	OrganizationID types.ID `form:"organizationId"`
}

func QueryRoles(q *RoleQuery, sec *session.Session) ([]RoleDetail, error) {
	if err := access.AssertPermissions(sec, authority.RoleView); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Order("organization_id ASC, name ASC")
	if orgID, scoped := access.OrganizationFilter(sec); scoped {
		db = db.Where("organization_id = ?", orgID)
	} else if q != nil && q.OrganizationID != 0 {
		db = db.Where("organization_id = ?", q.OrganizationID)
	}

	var roles []Role
	if err := db.Find(&roles).Error; err != nil {
		return nil, err
	}
	return withPermissions(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), roles)
}

func DetailRole(id types.ID, sec *session.Session) (*RoleDetail, error) {
	if err := access.AssertPermissions(sec, authority.RoleView); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	role, err := findVisibleRole(db, id, sec)
	if err != nil {
		return nil, err
	}
	details, err := withPermissions(db, []Role{*role})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func CreateRole(c *RoleCreation, sec *session.Session) (*RoleDetail, error) {
	if err := access.AssertPermissions(sec, authority.RoleManage); err != nil {
		return nil, err
	}
	if c.Name == authority.RoleSuperAdmin {
		return nil, &bizerror.ErrInvalidRole{Role: c.Name}
	}
	perms, err := grantablePermissions(c.Permissions, sec)
	if err != nil {
		return nil, err
	}

	orgID := sec.Organization.ID
	if sec.IsSuperAdmin() && c.OrganizationID != 0 {
		orgID = c.OrganizationID
	}

	role := Role{ID: idgen.NextID(roleIdWorker), Name: c.Name, Description: c.Description, OrganizationID: orgID, CreatedAt: time.Now()}
	err = persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if err := assertTenantOrganization(tx, orgID); err != nil {
			return err
		}
		var count int
		if err := tx.Model(&Role{}).Where("name = ? AND organization_id = ?", c.Name, orgID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return bizerror.ErrConflict
		}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		return bindPermissions(tx, role.ID, perms)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"role": role.Name, "organization": orgID.String(), "operator": sec.Identity.ID.String()}).Info("role created")
	return &RoleDetail{Role: role, Permissions: perms}, nil
}

// ReplaceRolePermissions replaces the direct grants of a role. Tokens issued before keep their snapshot.
func ReplaceRolePermissions(id types.ID, u *RolePermissionsUpdating, sec *session.Session) (*RoleDetail, error) {
	if err := access.AssertPermissions(sec, authority.RoleManage); err != nil {
		return nil, err
	}
	perms, err := grantablePermissions(u.Permissions, sec)
	if err != nil {
		return nil, err
	}
	var detail *RoleDetail
	err = persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		role, err := findVisibleRole(tx, id, sec)
		if err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&RolePermissionBinding{}).Error; err != nil {
			return err
		}
		if err := bindPermissions(tx, role.ID, perms); err != nil {
			return err
		}
		detail = &RoleDetail{Role: *role, Permissions: perms}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func GrantPermission(id types.ID, permission string, sec *session.Session) error {
	if err := access.AssertPermissions(sec, authority.RoleManage); err != nil {
		return err
	}
	perms, err := grantablePermissions([]string{permission}, sec)
	if err != nil {
		return err
	}
	return persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		role, err := findVisibleRole(tx, id, sec)
		if err != nil {
			return err
		}
		var count int
		if err := tx.Model(&RolePermissionBinding{}).Where("role_id = ? AND permission_id = ?", role.ID, perms[0]).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return bindPermissions(tx, role.ID, perms)
	})
}

func RevokePermission(id types.ID, permission string, sec *session.Session) error {
	if err := access.AssertPermissions(sec, authority.RoleManage); err != nil {
		return err
	}
	if !authority.IsKnown(permission) {
		return bizerror.NewErrValidation("permission", "unknown permission "+permission)
	}
	return persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		role, err := findVisibleRole(tx, id, sec)
		if err != nil {
			return err
		}
		return tx.Where("role_id = ? AND permission_id = ?", role.ID, permission).Delete(&RolePermissionBinding{}).Error
	})
}

// DeleteRole removes the role and its bindings. Permissions and users are kept. System roles can not be deleted.
func DeleteRole(id types.ID, sec *session.Session) error {
	if err := access.AssertPermissions(sec, authority.RoleManage); err != nil {
		return err
	}
	return persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		role, err := findVisibleRole(tx, id, sec)
		if err != nil {
			return err
		}
		if role.IsSystemRole {
			return bizerror.ErrForbidden
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&UserRoleBinding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&RolePermissionBinding{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", role.ID).Delete(&Role{}).Error
	})
}

// SeedStandardRoles creates the missing standard roles of an organization with their default grants.
// Existing roles are left untouched.
func SeedStandardRoles(tx *gorm.DB, orgID types.ID) error {
	for _, name := range authority.StandardRoles() {
		var count int
		if err := tx.Model(&Role{}).Where("name = ? AND organization_id = ?", name, orgID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		perms, err := authority.DefaultPermissions(name)
		if err != nil {
			return err
		}
		role := Role{ID: idgen.NextID(roleIdWorker), Name: name, Description: authority.RoleDescription(name), OrganizationID: orgID, CreatedAt: time.Now()}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		if err := bindPermissions(tx, role.ID, perms); err != nil {
			return err
		}
	}
	return nil
}

// FindOrganizationRole looks a role up by name inside one organization.
func FindOrganizationRole(db *gorm.DB, orgID types.ID, name string) (*Role, error) {
	role := Role{}
	if err := db.Where("name = ? AND organization_id = ?", name, orgID).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func findVisibleRole(db *gorm.DB, id types.ID, sec *session.Session) (*Role, error) {
	role := Role{}
	if err := db.Where("id = ?", id).First(&role).Error; err != nil {
		return nil, err
	}
	if err := access.AssertVisible(sec, role); err != nil {
		return nil, err
	}
	return &role, nil
}

// grantablePermissions validates permission ids. Only super admins may grant permissions they do not hold.
func grantablePermissions(ids []string, sec *session.Session) ([]string, error) {
	for _, id := range ids {
		if !authority.IsKnown(id) {
			return nil, bizerror.NewErrValidation("permissions", "unknown permission "+id)
		}
	}
	perms, err := authority.Normalize(ids)
	if err != nil {
		return nil, err
	}
	if !sec.IsSuperAdmin() && !sec.Perms.HasAll(perms...) {
		return nil, bizerror.ErrForbidden
	}
	return perms, nil
}

func bindPermissions(tx *gorm.DB, roleID types.ID, perms []string) error {
	for _, p := range perms {
		if err := tx.Create(&RolePermissionBinding{ID: idgen.NextID(roleIdWorker), RoleID: roleID, PermissionID: p}).Error; err != nil {
			return err
		}
	}
	return nil
}

func withPermissions(db *gorm.DB, roles []Role) ([]RoleDetail, error) {
	details := []RoleDetail{}
	if len(roles) == 0 {
		return details, nil
	}
	ids := make([]types.ID, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	var bindings []RolePermissionBinding
	if err := db.Where("role_id IN (?)", ids).Find(&bindings).Error; err != nil {
		return nil, err
	}
	grouped := map[types.ID][]string{}
	for _, b := range bindings {
		grouped[b.RoleID] = append(grouped[b.RoleID], b.PermissionID)
	}
	for _, r := range roles {
		perms, err := authority.Normalize(grouped[r.ID])
		if err != nil {
			return nil, err
		}
		details = append(details, RoleDetail{Role: r, Permissions: perms})
	}
	return details, nil
}

// assertTenantOrganization checks that roles and users may be placed into the organization.
func assertTenantOrganization(db *gorm.DB, orgID types.ID) error {
	org, err := findOrganization(db, orgID)
	if err != nil {
		return err
	}
	if org.IsSystemOrganization {
		return bizerror.ErrForbidden
	}
	return nil
}
