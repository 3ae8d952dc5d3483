package models

import "github.com/google/uuid"

// Role is the account-level role assigned to a user.
type Role string

const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleOwner      Role = "OWNER"
	RoleCoach      Role = "COACH"
	RoleClient     Role = "CLIENT"
)

// ValidRole reports whether r is one of the canonical roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleSuperAdmin, RoleOwner, RoleCoach, RoleClient:
		return true
	}
	return false
}

type User struct {
	Base
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         Role       `gorm:"type:varchar(20);default:'CLIENT'" json:"role"`
	TenantID     *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	IsStaff      bool       `gorm:"default:false" json:"is_staff"`

	// Weak reference: survives tenant deletion by nulling
	Tenant *Tenant `gorm:"foreignKey:TenantID;constraint:OnDelete:SET NULL" json:"tenant,omitempty"`
}

func (User) TableName() string {
	return "users"
}
