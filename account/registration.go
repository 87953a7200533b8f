package account

import (
	"academy/authority"
	"academy/bizerror"
	"academy/domain"
	"academy/idgen"
	"academy/persistence"
	"context"
	"errors"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// Registration is the self service sign up payload. Organization is the slug of the tenant to join.
type Registration struct {
	Email        string `json:"email" binding:"required,email,max=180"`
	Password     string `json:"password" binding:"required,min=8,max=64"`
	FirstName    string `json:"firstName" binding:"required,min=2,max=50"`
	LastName     string `json:"lastName" binding:"required,min=2,max=50"`
	Organization string `json:"organization" binding:"required,min=2,max=100"`
}

// Register creates an active student of an active, non system organization.
func Register(ctx context.Context, r *Registration) (*UserDetail, error) {
	hashed, err := HashPassword(r.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := User{ID: idgen.NextID(userIdWorker), Email: normalizeEmail(r.Email), Password: hashed,
		FirstName: r.FirstName, LastName: r.LastName, IsActive: true, CreatedAt: now, UpdatedAt: now}
	var roles []string
	err = persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		org := domain.Organization{}
		if err := tx.Where("slug = ?", r.Organization).First(&org).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if org.IsSystemOrganization || !org.IsActive {
			return bizerror.ErrForbidden
		}
		if err := assertEmailAvailable(tx, user.Email, 0); err != nil {
			return err
		}
		student, err := FindOrganizationRole(tx, org.ID, authority.RoleStudent)
		if err != nil {
			return err
		}
		user.OrganizationID = org.ID
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		roles, err = bindRoles(tx, user.ID, []Role{*student})
		return err
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user": user.ID.String(), "organization": user.OrganizationID.String()}).Info("user registered")
	return &UserDetail{User: user, Roles: roles}, nil
}
