package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

// SystemOrganizationSlug identifies the sentinel tenant holding platform administrators.
const SystemOrganizationSlug = "system"

type Organization struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name string `json:"name" sql:"type:VARCHAR(100) NOT NULL"`
	Slug string `json:"slug" gorm:"unique_index:uni_organization_slug" sql:"type:VARCHAR(100) NOT NULL"`

	IsActive             bool `json:"isActive"`
	IsSystemOrganization bool `json:"isSystemOrganization"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o Organization) TenantID() types.ID {
	return o.ID
}

// Descriptor is the compact organization view embedded into tokens.
func (o Organization) Descriptor() OrganizationDescriptor {
	return OrganizationDescriptor{ID: o.ID, Slug: o.Slug, Name: o.Name}
}

type OrganizationDescriptor struct {
	ID   types.ID `json:"id"`
	Slug string   `json:"slug"`
	Name string   `json:"name"`
}

type OrganizationCreation struct {
	Name     string `json:"name" binding:"required,max=100"`
	Slug     string `json:"slug" binding:"omitempty,min=2,max=100"`
	IsActive *bool  `json:"isActive"`
}

type OrganizationUpdating struct {
	Name     string `json:"name" binding:"required,max=100"`
	IsActive *bool  `json:"isActive"`
}
