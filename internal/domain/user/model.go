package user

import "time"

type Profile struct {
	UserID    uint      `gorm:"primaryKey"`
	FirstName *string   `gorm:"type:text"`
	LastName  *string   `gorm:"type:text"`
	Email     *string   `gorm:"type:text"`
	AvatarURL *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "user_profiles"
}
