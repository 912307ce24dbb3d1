package shopping

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListLists(ctx context.Context, familyID uint, filter ListFilter) ([]List, int64, error)
	GetListByID(ctx context.Context, familyID, listID uint) (*List, error)
	CreateList(ctx context.Context, list *List) error
	UpdateList(ctx context.Context, list *List) error
	SoftDeleteList(ctx context.Context, familyID, listID uint) (bool, error)
	SetPurchasedItemsArchived(ctx context.Context, listID uint, archived bool) error
	SoftDeleteItemsByList(ctx context.Context, listID uint) error
	CountItemsByListIDs(ctx context.Context, listIDs []uint) (map[uint]ItemCounts, error)
	ListItemsByListIDs(ctx context.Context, listIDs []uint, archived ArchivedFilter) ([]Item, error)
	ListItems(ctx context.Context, listID uint, archived ArchivedFilter) ([]Item, int64, error)
	CreateItem(ctx context.Context, item *Item) error
	GetItemWithListArchive(ctx context.Context, familyID, itemID uint) (*Item, bool, error)
	UpdateItem(ctx context.Context, item *Item) error
	SoftDeleteItem(ctx context.Context, itemID uint) (bool, error)
}
