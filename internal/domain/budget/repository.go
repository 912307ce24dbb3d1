package budget

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListTransactions(ctx context.Context, familyID uint, filter ListFilter) ([]Transaction, int64, error)
	GetTransactionByID(ctx context.Context, familyID, transactionID uint) (*Transaction, error)
	CreateTransaction(ctx context.Context, transaction *Transaction) error
	UpdateTransaction(ctx context.Context, transaction *Transaction) error
	DeleteTransaction(ctx context.Context, familyID, transactionID uint) (bool, error)
	ListCategories(ctx context.Context, familyID uint) ([]Category, error)
	GetCategoryByID(ctx context.Context, familyID, categoryID uint) (*Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, familyID, categoryID uint) (bool, error)
	Summary(ctx context.Context, familyID uint, filter SummaryFilter) (SummaryResult, error)
	ByCategory(ctx context.Context, familyID uint, filter SummaryFilter) ([]ByCategoryRow, error)
	Monthly(ctx context.Context, familyID uint, filter SummaryFilter) ([]MonthlyRow, error)
}
