package budget

import (
	"context"
	"errors"

	budgetdomain "famconomy-go/internal/domain/budget"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(budgetdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, familyID uint, filter budgetdomain.ListFilter) ([]budgetdomain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&budgetdomain.Transaction{}).
		Where("family_id = ?", familyID)
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var transactions []budgetdomain.Transaction
	if err := query.Order("date desc, id desc").Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *PostgresRepository) GetTransactionByID(ctx context.Context, familyID, transactionID uint) (*budgetdomain.Transaction, error) {
	var transaction budgetdomain.Transaction
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, transactionID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budgetdomain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, transaction *budgetdomain.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *PostgresRepository) UpdateTransaction(ctx context.Context, transaction *budgetdomain.Transaction) error {
	return r.db.WithContext(ctx).Save(transaction).Error
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, familyID, transactionID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, transactionID).
		Delete(&budgetdomain.Transaction{})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ListCategories(ctx context.Context, familyID uint) ([]budgetdomain.Category, error) {
	var categories []budgetdomain.Category
	if err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("name asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PostgresRepository) GetCategoryByID(ctx context.Context, familyID, categoryID uint) (*budgetdomain.Category, error) {
	var category budgetdomain.Category
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, categoryID).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budgetdomain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *budgetdomain.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, category *budgetdomain.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, familyID, categoryID uint) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&budgetdomain.Transaction{}).
			Where("family_id = ? AND category_id = ?", familyID, categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("family_id = ? AND id = ?", familyID, categoryID).
			Delete(&budgetdomain.Category{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return budgetdomain.ErrCategoryNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, budgetdomain.ErrCategoryNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PostgresRepository) Summary(ctx context.Context, familyID uint, filter budgetdomain.SummaryFilter) (budgetdomain.SummaryResult, error) {
	var row struct {
		Total float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&budgetdomain.Transaction{}).
		Select("coalesce(sum(amount), 0) as total, count(*) as count").
		Where("family_id = ? AND date >= ? AND date <= ?", familyID, filter.From, filter.To).
		Scan(&row).Error
	if err != nil {
		return budgetdomain.SummaryResult{}, err
	}
	return budgetdomain.SummaryResult{
		TotalAmount: row.Total,
		Count:       row.Count,
	}, nil
}

func (r *PostgresRepository) ByCategory(ctx context.Context, familyID uint, filter budgetdomain.SummaryFilter) ([]budgetdomain.ByCategoryRow, error) {
	var rows []budgetdomain.ByCategoryRow
	err := r.db.WithContext(ctx).
		Table("budget_transactions").
		Select(`budget_transactions.category_id,
			coalesce(budget_categories.name, '') as category_name,
			coalesce(sum(budget_transactions.amount), 0) as total,
			count(*) as count`).
		Joins("LEFT JOIN budget_categories ON budget_categories.id = budget_transactions.category_id").
		Where("budget_transactions.family_id = ? AND budget_transactions.date >= ? AND budget_transactions.date <= ?", familyID, filter.From, filter.To).
		Group("budget_transactions.category_id, budget_categories.name").
		Order("total desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) Monthly(ctx context.Context, familyID uint, filter budgetdomain.SummaryFilter) ([]budgetdomain.MonthlyRow, error) {
	var rows []budgetdomain.MonthlyRow
	err := r.db.WithContext(ctx).
		Table("budget_transactions").
		Select(`to_char(date_trunc('month', date), 'YYYY-MM') as month,
			coalesce(sum(amount), 0) as total,
			count(*) as count`).
		Where("family_id = ? AND date >= ? AND date <= ?", familyID, filter.From, filter.To).
		Group("month").
		Order("month asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
