package shopping

import (
	"context"
	"errors"

	shoppingdomain "famconomy-go/internal/domain/shopping"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(shoppingdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListLists(ctx context.Context, familyID uint, filter shoppingdomain.ListFilter) ([]shoppingdomain.List, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&shoppingdomain.List{}).
		Where("family_id = ?", familyID)
	if filter.Query != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Query+"%")
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

	var lists []shoppingdomain.List
	if err := query.Order("created_at desc").Find(&lists).Error; err != nil {
		return nil, 0, err
	}
	return lists, total, nil
}

func (r *PostgresRepository) GetListByID(ctx context.Context, familyID, listID uint) (*shoppingdomain.List, error) {
	var list shoppingdomain.List
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, listID).
		First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shoppingdomain.ErrListNotFound
		}
		return nil, err
	}
	return &list, nil
}

func (r *PostgresRepository) CreateList(ctx context.Context, list *shoppingdomain.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *PostgresRepository) UpdateList(ctx context.Context, list *shoppingdomain.List) error {
	return r.db.WithContext(ctx).Save(list).Error
}

func (r *PostgresRepository) SoftDeleteList(ctx context.Context, familyID, listID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, listID).
		Delete(&shoppingdomain.List{})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) SetPurchasedItemsArchived(ctx context.Context, listID uint, archived bool) error {
	return r.db.WithContext(ctx).
		Model(&shoppingdomain.Item{}).
		Where("list_id = ? AND is_purchased = true", listID).
		Update("is_archived", archived).Error
}

func (r *PostgresRepository) SoftDeleteItemsByList(ctx context.Context, listID uint) error {
	return r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Delete(&shoppingdomain.Item{}).Error
}

func (r *PostgresRepository) CountItemsByListIDs(ctx context.Context, listIDs []uint) (map[uint]shoppingdomain.ItemCounts, error) {
	counts := make(map[uint]shoppingdomain.ItemCounts, len(listIDs))
	if len(listIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ListID    uint
		Total     int64
		Purchased int64
		Archived  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&shoppingdomain.Item{}).
		Select(`list_id,
			count(*) as total,
			count(*) filter (where is_purchased) as purchased,
			count(*) filter (where is_archived) as archived`).
		Where("list_id IN ?", listIDs).
		Group("list_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ListID] = shoppingdomain.ItemCounts{
			ItemsTotal:     row.Total,
			ItemsPurchased: row.Purchased,
			ItemsArchived:  row.Archived,
		}
	}
	return counts, nil
}

func (r *PostgresRepository) ListItemsByListIDs(ctx context.Context, listIDs []uint, archived shoppingdomain.ArchivedFilter) ([]shoppingdomain.Item, error) {
	if len(listIDs) == 0 {
		return []shoppingdomain.Item{}, nil
	}

	query := r.db.WithContext(ctx).Where("list_id IN ?", listIDs)
	query = applyArchivedFilter(query, archived)

	var items []shoppingdomain.Item
	if err := query.Order("created_at asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) ListItems(ctx context.Context, listID uint, archived shoppingdomain.ArchivedFilter) ([]shoppingdomain.Item, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&shoppingdomain.Item{}).
		Where("list_id = ?", listID)
	query = applyArchivedFilter(query, archived)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []shoppingdomain.Item
	if err := query.Order("created_at asc, id asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) CreateItem(ctx context.Context, item *shoppingdomain.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetItemWithListArchive loads an item scoped to the family through its list
// and reports the list's archive-purchased setting.
func (r *PostgresRepository) GetItemWithListArchive(ctx context.Context, familyID, itemID uint) (*shoppingdomain.Item, bool, error) {
	var row struct {
		shoppingdomain.Item
		ListArchivePurchased bool
	}
	if err := r.db.WithContext(ctx).
		Model(&shoppingdomain.Item{}).
		Select("shopping_items.*, shopping_lists.archive_purchased as list_archive_purchased").
		Joins("JOIN shopping_lists ON shopping_lists.id = shopping_items.list_id AND shopping_lists.deleted_at IS NULL").
		Where("shopping_items.id = ? AND shopping_lists.family_id = ?", itemID, familyID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, shoppingdomain.ErrItemNotFound
		}
		return nil, false, err
	}
	item := row.Item
	return &item, row.ListArchivePurchased, nil
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, item *shoppingdomain.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *PostgresRepository) SoftDeleteItem(ctx context.Context, itemID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&shoppingdomain.Item{})
	return result.RowsAffected > 0, result.Error
}

func applyArchivedFilter(query *gorm.DB, archived shoppingdomain.ArchivedFilter) *gorm.DB {
	switch archived {
	case shoppingdomain.ArchivedOnly:
		return query.Where("is_archived = true")
	case shoppingdomain.ArchivedAll:
		return query
	default:
		return query.Where("is_archived = false")
	}
}
