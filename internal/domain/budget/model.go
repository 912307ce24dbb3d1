package budget

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	FamilyID  uint      `gorm:"index;not null"`
	Name      string    `gorm:"not null"`
	Color     *string   `gorm:"type:text"`
	Emoji     *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Category) TableName() string {
	return "budget_categories"
}

type Transaction struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	FamilyID   uint      `gorm:"index;not null"`
	UserID     uint      `gorm:"index;not null"`
	Date       time.Time `gorm:"type:date;not null"`
	Amount     float64   `gorm:"type:numeric(12,2);not null"`
	Currency   string    `gorm:"size:3;not null"`
	Title      string    `gorm:"not null"`
	CategoryID *uint     `gorm:"index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "budget_transactions"
}

type ListFilter struct {
	From        *time.Time
	To          *time.Time
	CategoryIDs []uint
	Limit       int
	Offset      int
}

type CreateTransactionInput struct {
	FamilyID   uint
	UserID     uint
	Date       time.Time
	Amount     float64
	Currency   string
	Title      string
	CategoryID *uint
}

type UpdateTransactionInput struct {
	ID         uint
	FamilyID   uint
	Date       time.Time
	Amount     float64
	Currency   string
	Title      string
	CategoryID *uint
}

type CreateCategoryInput struct {
	FamilyID uint
	Name     string
	Color    *string
	Emoji    *string
}

type UpdateCategoryInput struct {
	ID       uint
	FamilyID uint
	Name     *string
	Color    *string
	Emoji    *string
}

type SummaryFilter struct {
	From time.Time
	To   time.Time
}

type SummaryResult struct {
	TotalAmount float64 `json:"total"`
	Count       int64   `json:"count"`
	AvgPerDay   float64 `json:"avg_per_day"`
}

type ByCategoryRow struct {
	CategoryID   *uint   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
	Count        int64   `json:"count"`
}

type MonthlyRow struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}
