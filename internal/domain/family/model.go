package family

import "time"

const (
	RoleOwner  = "owner"
	RoleParent = "parent"
	RoleChild  = "child"
)

type Family struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"not null"`
	Code      string    `gorm:"size:6;not null;uniqueIndex"`
	OwnerID   uint      `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type FamilyMember struct {
	FamilyID uint      `gorm:"primaryKey"`
	UserID   uint      `gorm:"primaryKey;index"`
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// FamilyMemberProfile joins a membership row with the member's user profile.
type FamilyMemberProfile struct {
	UserID    uint
	Role      string
	JoinedAt  time.Time
	FirstName string
	LastName  string
	Email     string
	AvatarURL string
}

func validRole(role string) bool {
	switch role {
	case RoleParent, RoleChild:
		return true
	}
	return false
}
