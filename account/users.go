package account

import (
	"academy/access"
	"academy/authority"
	"academy/bizerror"
	"academy/domain"
	"academy/idgen"
	"academy/persistence"
	"academy/session"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var userIdWorker = idgen.NewWorker()

// QueryUsers lists the users of the principal's organization, every user for super admins.
func QueryUsers(sec *session.Session) ([]UserDetail, error) {
	if err := access.AssertPermissions(sec, authority.UserView); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	q := db.Order("email ASC")
	if orgID, scoped := access.OrganizationFilter(sec); scoped {
		q = q.Where("organization_id = ?", orgID)
	}
	var users []User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return withRoles(db, users)
}

// QueryOrganizationUsers lists the users of one organization. The system organization is not listable.
func QueryOrganizationUsers(orgID types.ID, sec *session.Session) ([]UserDetail, error) {
	if err := access.AssertPermissions(sec, authority.UserView); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	org, err := findOrganization(db, orgID)
	if err != nil {
		return nil, err
	}
	if err := access.AssertVisible(sec, org); err != nil {
		return nil, err
	}
	if err := access.AssertNotSystemOrganization(org); err != nil {
		return nil, err
	}
	var users []User
	if err := db.Where("organization_id = ?", org.ID).Order("email ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return withRoles(db, users)
}

func DetailUser(id types.ID, sec *session.Session) (*UserDetail, error) {
	if err := access.AssertPermissions(sec, authority.UserView); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	user, err := findVisibleUser(db, id, sec)
	if err != nil {
		return nil, err
	}
	details, err := withRoles(db, []User{*user})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func CreateUser(c *UserCreation, sec *session.Session) (*UserDetail, error) {
	if err := access.AssertPermissions(sec, authority.UserCreate); err != nil {
		return nil, err
	}
	orgID := sec.Organization.ID
	if sec.IsSuperAdmin() && c.OrganizationID != 0 {
		orgID = c.OrganizationID
	}

	hashed, err := HashPassword(c.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := User{
		ID: idgen.NextID(userIdWorker), Email: normalizeEmail(c.Email), Password: hashed,
		FirstName: c.FirstName, LastName: c.LastName, IsActive: c.IsActive == nil || *c.IsActive,
		OrganizationID: orgID, CreatedAt: now, UpdatedAt: now,
	}
	var roleNames []string
	err = persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		org, err := findOrganization(tx, orgID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.NewErrValidation("organizationId", "organization not found")
			}
			return err
		}
		if err := assertEmailAvailable(tx, user.Email, 0); err != nil {
			return err
		}
		roles, err := resolveRoles(tx, org, c.Roles, sec)
		if err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		roleNames, err = bindRoles(tx, user.ID, roles)
		return err
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user": user.ID.String(), "organization": orgID.String(), "operator": sec.Identity.ID.String()}).Info("user created")
	return &UserDetail{User: user, Roles: roleNames}, nil
}

func UpdateUser(id types.ID, u *UserUpdating, sec *session.Session) (*UserDetail, error) {
	if err := access.AssertPermissions(sec, authority.UserEdit); err != nil {
		return nil, err
	}
	var detail *UserDetail
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		user, err := findVisibleUser(tx, id, sec)
		if err != nil {
			return err
		}
		email := normalizeEmail(u.Email)
		if err := assertEmailAvailable(tx, email, user.ID); err != nil {
			return err
		}
		changes := map[string]interface{}{
			"email": email, "first_name": u.FirstName, "last_name": u.LastName, "updated_at": time.Now(),
		}
		if u.IsActive != nil {
			changes["is_active"] = *u.IsActive
		}
		if u.Password != "" {
			hashed, err := HashPassword(u.Password)
			if err != nil {
				return err
			}
			changes["password"] = hashed
		}
		if err := tx.Model(&User{}).Where("id = ?", user.ID).Updates(changes).Error; err != nil {
			return err
		}

		if u.Roles != nil {
			org, err := findOrganization(tx, user.OrganizationID)
			if err != nil {
				return err
			}
			roles, err := resolveRoles(tx, org, *u.Roles, sec)
			if err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", user.ID).Delete(&UserRoleBinding{}).Error; err != nil {
				return err
			}
			if _, err := bindRoles(tx, user.ID, roles); err != nil {
				return err
			}
		}

		updated := User{}
		if err := tx.Where("id = ?", user.ID).First(&updated).Error; err != nil {
			return err
		}
		details, err := withRoles(tx, []User{updated})
		if err != nil {
			return err
		}
		detail = &details[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// DeleteUser removes the user and its role bindings. Principals can not delete themselves.
func DeleteUser(id types.ID, sec *session.Session) error {
	if err := access.AssertPermissions(sec, authority.UserDelete); err != nil {
		return err
	}
	if sec.Identity.ID == id {
		return bizerror.ErrForbidden
	}
	return persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		user, err := findVisibleUser(tx, id, sec)
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&UserRoleBinding{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", user.ID).Delete(&User{}).Error
	})
}

// VerifyCredentials returns the active user of an active organization matching email and password.
// Every mismatch is reported as ErrUnauthenticated.
func VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	user := User{}
	if err := db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrUnauthenticated
		}
		return nil, err
	}
	if !VerifyPassword(user.Password, password) {
		return nil, bizerror.ErrUnauthenticated
	}
	if err := assertActive(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveUser loads a user that may still sign in: the user and its organization are active.
// Anything else is reported as ErrUnauthenticated.
func FindActiveUser(ctx context.Context, id types.ID) (*User, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	user := User{}
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrUnauthenticated
		}
		return nil, err
	}
	if err := assertActive(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func assertActive(db *gorm.DB, user *User) error {
	if !user.IsActive {
		return bizerror.ErrUnauthenticated
	}
	org, err := findOrganization(db, user.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrUnauthenticated
		}
		return err
	}
	if !org.IsActive {
		return bizerror.ErrUnauthenticated
	}
	return nil
}

// resolveRoles maps role names to roles of the organization. Unknown or foreign names are invalid.
// The global super admin role is only grantable by super admins, inside the system organization.
func resolveRoles(tx *gorm.DB, org *domain.Organization, names []string, sec *session.Session) ([]Role, error) {
	roles := []Role{}
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		lookupOrg := org.ID
		if name == authority.RoleSuperAdmin {
			if !sec.IsSuperAdmin() || !org.IsSystemOrganization {
				return nil, &bizerror.ErrInvalidRole{Role: name}
			}
			lookupOrg = 0
		}
		role, err := FindOrganizationRole(tx, lookupOrg, name)
		if err != nil {
			if errors.Is(err, bizerror.ErrRoleNotFound) {
				return nil, &bizerror.ErrInvalidRole{Role: name}
			}
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

func bindRoles(tx *gorm.DB, userID types.ID, roles []Role) ([]string, error) {
	names := []string{}
	for _, r := range roles {
		if err := tx.Create(&UserRoleBinding{ID: idgen.NextID(userIdWorker), UserID: userID, RoleID: r.ID}).Error; err != nil {
			return nil, err
		}
		names = append(names, r.Name)
	}
	return names, nil
}

func withRoles(db *gorm.DB, users []User) ([]UserDetail, error) {
	details := []UserDetail{}
	if len(users) == 0 {
		return details, nil
	}
	ids := make([]types.ID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	var bindings []UserRoleBinding
	if err := db.Where("user_id IN (?)", ids).Find(&bindings).Error; err != nil {
		return nil, err
	}
	roleIds := []types.ID{}
	for _, b := range bindings {
		roleIds = append(roleIds, b.RoleID)
	}
	roleNames := map[types.ID]string{}
	if len(roleIds) > 0 {
		var roles []Role
		if err := db.Where("id IN (?)", roleIds).Find(&roles).Error; err != nil {
			return nil, err
		}
		for _, r := range roles {
			roleNames[r.ID] = r.Name
		}
	}
	grouped := map[types.ID][]string{}
	for _, b := range bindings {
		if name, found := roleNames[b.RoleID]; found {
			grouped[b.UserID] = append(grouped[b.UserID], name)
		}
	}
	for _, u := range users {
		names := grouped[u.ID]
		if names == nil {
			names = []string{}
		}
		details = append(details, UserDetail{User: u, Roles: sortedRoles(names)})
	}
	return details, nil
}

// sortedRoles orders role names from most to least privileged, custom roles last in name order.
func sortedRoles(names []string) []string {
	result := []string{}
	for _, known := range authority.KnownRoles() {
		for _, n := range names {
			if n == known {
				result = append(result, n)
			}
		}
	}
	var custom []string
	for _, n := range names {
		if !authority.Roles(authority.KnownRoles()).Has(n) {
			custom = append(custom, n)
		}
	}
	sort.Strings(custom)
	return append(result, custom...)
}

func findVisibleUser(db *gorm.DB, id types.ID, sec *session.Session) (*User, error) {
	user := User{}
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	if err := access.AssertVisible(sec, user); err != nil {
		return nil, err
	}
	return &user, nil
}

func findOrganization(db *gorm.DB, id types.ID) (*domain.Organization, error) {
	org := domain.Organization{}
	if err := db.Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func assertEmailAvailable(db *gorm.DB, email string, self types.ID) error {
	var count int
	if err := db.Model(&User{}).Where("email = ? AND id <> ?", email, self).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return bizerror.ErrConflict
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
