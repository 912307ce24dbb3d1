package shopping

import (
	"time"

	"gorm.io/gorm"
)

type List struct {
	ID               uint           `gorm:"primaryKey;autoIncrement"`
	FamilyID         uint           `gorm:"index;not null"`
	Title            string         `gorm:"not null"`
	ArchivePurchased bool           `gorm:"not null;default:false;column:archive_purchased"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (List) TableName() string {
	return "shopping_lists"
}

type Item struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	ListID          uint      `gorm:"index;not null"`
	Name            string    `gorm:"not null"`
	Quantity        *string   `gorm:"type:text"`
	Note            *string   `gorm:"type:text"`
	IsPurchased     bool      `gorm:"not null;default:false"`
	IsArchived      bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	PurchasedAt     *time.Time
	PurchasedByID   *uint          `gorm:"column:purchased_by_id"`
	PurchasedByName *string        `gorm:"column:purchased_by_name"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Item) TableName() string {
	return "shopping_items"
}

// MemberSnapshot captures who purchased an item at purchase time, so the
// record survives the member leaving the family.
type MemberSnapshot struct {
	ID   uint
	Name string
}

type ListFilter struct {
	Query  string
	Limit  int
	Offset int
}

type ArchivedFilter string

const (
	ArchivedExclude ArchivedFilter = "exclude"
	ArchivedOnly    ArchivedFilter = "only"
	ArchivedAll     ArchivedFilter = "all"
)

type ItemCounts struct {
	ItemsTotal     int64
	ItemsPurchased int64
	ItemsArchived  int64
}

type ListWithItems struct {
	List   List
	Counts ItemCounts
	Items  []Item
}

type CreateListInput struct {
	FamilyID         uint
	Title            string
	ArchivePurchased bool
}

type UpdateListInput struct {
	ID               uint
	FamilyID         uint
	Title            *string
	ArchivePurchased *bool
}

type CreateItemInput struct {
	ListID   uint
	Name     string
	Quantity *string
	Note     *string
}

type UpdateItemInput struct {
	ID          uint
	FamilyID    uint
	Name        *string
	Quantity    *string
	Note        *string
	IsPurchased *bool
	PurchasedBy *MemberSnapshot
}
