package models

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InviteStatus string

const (
	InvitePending  InviteStatus = "PENDING"
	InviteAccepted InviteStatus = "ACCEPTED"
	InviteExpired  InviteStatus = "EXPIRED"
)

// DefaultInviteExpiry is applied when an invitation is created without an
// explicit expiry.
const DefaultInviteExpiry = 7 * 24 * time.Hour

type OwnerInvitation struct {
	Base
	TenantID   uuid.UUID    `gorm:"type:uuid;index;not null" json:"tenant_id"`
	Email      string       `gorm:"not null" json:"email"`
	Token      string       `gorm:"uniqueIndex;not null" json:"token"`
	Status     InviteStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	ExpiresAt  time.Time    `gorm:"not null" json:"expires_at"`
	AcceptedAt *time.Time   `json:"accepted_at,omitempty"`

	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (OwnerInvitation) TableName() string {
	return "owner_invitations"
}

// BeforeCreate fills in the token and expiry when left unset. The token is
// immutable once persisted.
func (i *OwnerInvitation) BeforeCreate(tx *gorm.DB) error {
	if err := i.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if i.Token == "" {
		token, err := NewInviteToken()
		if err != nil {
			return err
		}
		i.Token = token
	}
	if i.Status == "" {
		i.Status = InvitePending
	}
	if i.ExpiresAt.IsZero() {
		i.ExpiresAt = time.Now().Add(DefaultInviteExpiry)
	}
	return nil
}

// IsExpired reports whether the invitation can no longer be accepted due to
// age. An invitation already marked EXPIRED stays expired regardless of the
// clock.
func (i *OwnerInvitation) IsExpired() bool {
	return !time.Now().Before(i.ExpiresAt) || i.Status == InviteExpired
}

// NewInviteToken returns an opaque URL-safe bearer token backed by 32 bytes
// of cryptographically secure randomness.
func NewInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
