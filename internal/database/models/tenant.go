package models

type Tenant struct {
	Base
	Name           string `gorm:"not null" json:"name"`
	Slug           string `gorm:"uniqueIndex;not null" json:"slug"`
	LogoURL        string `json:"logo_url"`
	ThemePrimary   string `gorm:"type:varchar(20)" json:"theme_primary"`
	ThemeSecondary string `gorm:"type:varchar(20)" json:"theme_secondary"`
	Address        string `json:"address"`
	ContactEmail   string `json:"contact_email"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Users            []User            `gorm:"foreignKey:TenantID" json:"-"`
	OwnerInvitations []OwnerInvitation `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}
