package budget

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const defaultCategoriesCacheTTL = time.Minute

var (
	currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
	colorPattern    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

type Service struct {
	repo     Repository
	cache    CategoriesCache
	cacheTTL time.Duration
}

func NewService(repo Repository, cache CategoriesCache, cacheTTL time.Duration) *Service {
	if cache == nil {
		cache = noopCategoriesCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCategoriesCacheTTL
	}

	return &Service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) ListTransactions(ctx context.Context, familyID uint, filter ListFilter) ([]Transaction, int64, error) {
	return s.repo.ListTransactions(ctx, familyID, filter)
}

func (s *Service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*Transaction, error) {
	if err := validateTransactionInput(input.Currency, input.Title); err != nil {
		return nil, err
	}

	transaction := Transaction{
		FamilyID:   input.FamilyID,
		UserID:     input.UserID,
		Date:       input.Date,
		Amount:     input.Amount,
		Currency:   strings.ToUpper(input.Currency),
		Title:      strings.TrimSpace(input.Title),
		CategoryID: input.CategoryID,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if input.CategoryID != nil {
			if _, err := tx.GetCategoryByID(ctx, input.FamilyID, *input.CategoryID); err != nil {
				return err
			}
		}
		return tx.CreateTransaction(ctx, &transaction)
	})
	if err != nil {
		return nil, err
	}

	return &transaction, nil
}

func (s *Service) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*Transaction, error) {
	if err := validateTransactionInput(input.Currency, input.Title); err != nil {
		return nil, err
	}

	var updated Transaction
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if input.CategoryID != nil {
			if _, err := tx.GetCategoryByID(ctx, input.FamilyID, *input.CategoryID); err != nil {
				return err
			}
		}

		transaction, err := tx.GetTransactionByID(ctx, input.FamilyID, input.ID)
		if err != nil {
			return err
		}

		transaction.Date = input.Date
		transaction.Amount = input.Amount
		transaction.Currency = strings.ToUpper(input.Currency)
		transaction.Title = strings.TrimSpace(input.Title)
		transaction.CategoryID = input.CategoryID
		transaction.UpdatedAt = time.Now().UTC()

		if err := tx.UpdateTransaction(ctx, transaction); err != nil {
			return err
		}

		updated = *transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, familyID, transactionID uint) error {
	deleted, err := s.repo.DeleteTransaction(ctx, familyID, transactionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTransactionNotFound
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context, familyID uint) ([]Category, error) {
	if cached, ok := s.cache.GetByFamilyID(familyID); ok {
		return cached, nil
	}

	categories, err := s.repo.ListCategories(ctx, familyID)
	if err != nil {
		return nil, err
	}

	s.cache.SetByFamilyID(familyID, categories, s.cacheTTL)
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	color, err := normalizeColor(input.Color)
	if err != nil {
		return nil, err
	}

	category := Category{
		FamilyID: input.FamilyID,
		Name:     name,
		Color:    color,
		Emoji:    trimOrNil(input.Emoji),
	}

	if err := s.repo.CreateCategory(ctx, &category); err != nil {
		return nil, err
	}

	s.cache.DeleteByFamilyID(input.FamilyID)
	return &category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, input.FamilyID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name is required")
		}
		category.Name = name
	}
	if input.Color != nil {
		color, err := normalizeColor(input.Color)
		if err != nil {
			return nil, err
		}
		category.Color = color
	}
	if input.Emoji != nil {
		category.Emoji = trimOrNil(input.Emoji)
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.cache.DeleteByFamilyID(input.FamilyID)
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, familyID, categoryID uint) error {
	deleted, err := s.repo.DeleteCategory(ctx, familyID, categoryID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCategoryNotFound
	}

	s.cache.DeleteByFamilyID(familyID)
	return nil
}

func (s *Service) Summary(ctx context.Context, familyID uint, filter SummaryFilter) (SummaryResult, error) {
	result, err := s.repo.Summary(ctx, familyID, filter)
	if err != nil {
		return SummaryResult{}, err
	}

	days := daysBetweenInclusive(filter.From, filter.To)
	if days > 0 {
		result.AvgPerDay = result.TotalAmount / float64(days)
	}

	return result, nil
}

func (s *Service) ByCategory(ctx context.Context, familyID uint, filter SummaryFilter) ([]ByCategoryRow, error) {
	return s.repo.ByCategory(ctx, familyID, filter)
}

func (s *Service) Monthly(ctx context.Context, familyID uint, filter SummaryFilter) ([]MonthlyRow, error) {
	return s.repo.Monthly(ctx, familyID, filter)
}

func validateTransactionInput(currency, title string) error {
	if !currencyPattern.MatchString(strings.TrimSpace(currency)) {
		return ErrInvalidCurrency
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func normalizeColor(color *string) (*string, error) {
	if color == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*color)
	if trimmed == "" {
		return nil, nil
	}
	if !colorPattern.MatchString(trimmed) {
		return nil, ErrInvalidColor
	}
	return &trimmed, nil
}

func trimOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func daysBetweenInclusive(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}
