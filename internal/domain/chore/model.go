package chore

import "time"

type Chore struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"`
	FamilyID     uint       `gorm:"index;not null"`
	Title        string     `gorm:"not null"`
	Description  *string    `gorm:"type:text"`
	AssignedToID *uint      `gorm:"index;column:assigned_to_id"`
	RewardAmount *float64   `gorm:"type:numeric(8,2)"`
	DueDate      *time.Time `gorm:"type:date"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

type Completion struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	ChoreID         uint      `gorm:"index;not null"`
	CompletedByID   uint      `gorm:"not null;column:completed_by_id"`
	CompletedByName string    `gorm:"not null;column:completed_by_name"`
	CompletedAt     time.Time `gorm:"autoCreateTime"`
	Note            *string   `gorm:"type:text"`
}

func (Completion) TableName() string {
	return "chore_completions"
}

// MemberSnapshot captures the completing member at completion time.
type MemberSnapshot struct {
	ID   uint
	Name string
}

type ListFilter struct {
	AssignedToID *uint
	Limit        int
	Offset       int
}

type ChoreWithCompletions struct {
	Chore       Chore
	Completions []Completion
}

type CreateChoreInput struct {
	FamilyID     uint
	Title        string
	Description  *string
	AssignedToID *uint
	RewardAmount *float64
	DueDate      *time.Time
}

type UpdateChoreInput struct {
	ID            uint
	FamilyID      uint
	Title         *string
	Description   *string
	AssignedToID  *uint
	ClearAssignee bool
	RewardAmount  *float64
	DueDate       *time.Time
}

type CompleteInput struct {
	ChoreID     uint
	FamilyID    uint
	CompletedBy MemberSnapshot
	Note        *string
}
