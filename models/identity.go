package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AuthTypeLocal  = "local"  // identity minted in-service, never synced upstream
	AuthTypeRemote = "remote" // identity issued by the auth service, mirrored remotely
)

// Identity is the resolved user for a session. All stored keys are
// namespaced by ID. Owned exclusively by the session service.
type Identity struct {
	ID          string `gorm:"primaryKey" json:"id"`
	AuthType    string `gorm:"type:varchar(16);not null;default:'local'" json:"auth_type"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `gorm:"index" json:"email,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsRemote reports whether this identity participates in upstream sync.
func (i *Identity) IsRemote() bool {
	return i.AuthType == AuthTypeRemote
}
