package shopping

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListLists(ctx context.Context, familyID uint, filter ListFilter, includeItems bool, itemsArchived ArchivedFilter) ([]ListWithItems, int64, error) {
	lists, total, err := s.repo.ListLists(ctx, familyID, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(lists) == 0 {
		return []ListWithItems{}, total, nil
	}

	listIDs := make([]uint, 0, len(lists))
	for _, list := range lists {
		listIDs = append(listIDs, list.ID)
	}

	counts, err := s.repo.CountItemsByListIDs(ctx, listIDs)
	if err != nil {
		return nil, 0, err
	}

	itemsByList := map[uint][]Item{}
	if includeItems {
		items, err := s.repo.ListItemsByListIDs(ctx, listIDs, itemsArchived)
		if err != nil {
			return nil, 0, err
		}
		for _, item := range items {
			itemsByList[item.ListID] = append(itemsByList[item.ListID], item)
		}
	}

	result := make([]ListWithItems, 0, len(lists))
	for _, list := range lists {
		items := itemsByList[list.ID]
		if includeItems && items == nil {
			items = []Item{}
		}
		result = append(result, ListWithItems{
			List:   list,
			Counts: counts[list.ID],
			Items:  items,
		})
	}

	return result, total, nil
}

func (s *Service) CreateList(ctx context.Context, input CreateListInput) (*List, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	list := List{
		FamilyID:         input.FamilyID,
		Title:            title,
		ArchivePurchased: input.ArchivePurchased,
	}
	if err := s.repo.CreateList(ctx, &list); err != nil {
		return nil, err
	}

	return &list, nil
}

func (s *Service) UpdateList(ctx context.Context, input UpdateListInput) (*List, error) {
	if input.Title == nil && input.ArchivePurchased == nil {
		return nil, fmt.Errorf("no fields to update")
	}

	list, err := s.repo.GetListByID(ctx, input.FamilyID, input.ID)
	if err != nil {
		return nil, err
	}

	archiveChanged := false
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("title is required")
		}
		list.Title = trimmed
	}
	if input.ArchivePurchased != nil {
		archiveChanged = list.ArchivePurchased != *input.ArchivePurchased
		list.ArchivePurchased = *input.ArchivePurchased
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.UpdateList(ctx, list); err != nil {
			return err
		}
		if archiveChanged {
			return tx.SetPurchasedItemsArchived(ctx, list.ID, list.ArchivePurchased)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Service) DeleteList(ctx context.Context, familyID, listID uint) error {
	list, err := s.repo.GetListByID(ctx, familyID, listID)
	if err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.SoftDeleteItemsByList(ctx, list.ID); err != nil {
			return err
		}
		deleted, err := tx.SoftDeleteList(ctx, familyID, listID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrListNotFound
		}
		return nil
	})
}

func (s *Service) ListItems(ctx context.Context, familyID, listID uint, archived ArchivedFilter) ([]Item, int64, error) {
	if _, err := s.repo.GetListByID(ctx, familyID, listID); err != nil {
		return nil, 0, err
	}

	return s.repo.ListItems(ctx, listID, archived)
}

func (s *Service) CreateItem(ctx context.Context, familyID uint, input CreateItemInput) (*Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if _, err := s.repo.GetListByID(ctx, familyID, input.ListID); err != nil {
		return nil, err
	}

	item := Item{
		ListID:   input.ListID,
		Name:     name,
		Quantity: trimOrNil(input.Quantity),
		Note:     trimOrNil(input.Note),
	}

	if err := s.repo.CreateItem(ctx, &item); err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *Service) UpdateItem(ctx context.Context, input UpdateItemInput) (*Item, error) {
	if input.Name == nil && input.Quantity == nil && input.Note == nil && input.IsPurchased == nil {
		return nil, fmt.Errorf("no fields to update")
	}

	item, archivePurchased, err := s.repo.GetItemWithListArchive(ctx, input.FamilyID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("name is required")
		}
		item.Name = trimmed
	}
	if input.Quantity != nil {
		item.Quantity = trimOrNil(input.Quantity)
	}
	if input.Note != nil {
		item.Note = trimOrNil(input.Note)
	}

	if input.IsPurchased != nil {
		if *input.IsPurchased {
			if input.PurchasedBy == nil || input.PurchasedBy.ID == 0 {
				return nil, fmt.Errorf("purchased_by is required")
			}
			now := time.Now().UTC()
			item.IsPurchased = true
			item.PurchasedAt = &now
			item.IsArchived = archivePurchased

			purchasedByID := input.PurchasedBy.ID
			purchasedByName := strings.TrimSpace(input.PurchasedBy.Name)
			item.PurchasedByID = &purchasedByID
			item.PurchasedByName = &purchasedByName
		} else {
			item.IsPurchased = false
			item.IsArchived = false
			item.PurchasedAt = nil
			item.PurchasedByID = nil
			item.PurchasedByName = nil
		}
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, familyID, itemID uint) error {
	item, _, err := s.repo.GetItemWithListArchive(ctx, familyID, itemID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.SoftDeleteItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}
	return nil
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
