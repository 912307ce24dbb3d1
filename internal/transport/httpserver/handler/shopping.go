package handler

import (
	"errors"
	"net/http"
	"time"

	shoppingdomain "famconomy-go/internal/domain/shopping"
	"github.com/go-chi/chi/v5"
)

type createShoppingListRequest struct {
	Title            string `json:"title"`
	ArchivePurchased bool   `json:"archive_purchased"`
}

type updateShoppingListRequest struct {
	Title            *string `json:"title"`
	ArchivePurchased *bool   `json:"archive_purchased"`
}

type createShoppingItemRequest struct {
	Name     string  `json:"name"`
	Quantity *string `json:"quantity"`
	Note     *string `json:"note"`
}

type updateShoppingItemRequest struct {
	Name        *string `json:"name"`
	Quantity    *string `json:"quantity"`
	Note        *string `json:"note"`
	IsPurchased *bool   `json:"is_purchased"`
}

type shoppingListResponse struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	ArchivePurchased bool      `json:"archive_purchased"`
	ItemsTotal       int64     `json:"items_total"`
	ItemsPurchased   int64     `json:"items_purchased"`
	ItemsArchived    int64     `json:"items_archived"`
	CreatedAt        time.Time `json:"created_at"`

	Items []shoppingItemResponse `json:"items,omitempty"`
}

type shoppingItemResponse struct {
	ID              uint       `json:"id"`
	ListID          uint       `json:"list_id"`
	Name            string     `json:"name"`
	Quantity        *string    `json:"quantity"`
	Note            *string    `json:"note"`
	IsPurchased     bool       `json:"is_purchased"`
	IsArchived      bool       `json:"is_archived"`
	PurchasedAt     *time.Time `json:"purchased_at"`
	PurchasedByID   *uint      `json:"purchased_by_id"`
	PurchasedByName *string    `json:"purchased_by_name"`
	CreatedAt       time.Time  `json:"created_at"`
}

type shoppingListsResponse struct {
	Lists []shoppingListResponse `json:"lists"`
	Total int64                  `json:"total"`
}

type shoppingItemsResponse struct {
	Items []shoppingItemResponse `json:"items"`
	Total int64                  `json:"total"`
}

func (h *Handlers) ListShoppingLists(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit, err := parseIntParam(query.Get("limit"), 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	includeItems := query.Get("include") == "items"

	lists, total, err := h.Shopping.ListLists(r.Context(), family.ID, shoppingdomain.ListFilter{
		Query:  query.Get("q"),
		Limit:  limit,
		Offset: offset,
	}, includeItems, archivedFilter(query.Get("archived")))
	if err != nil {
		h.log.InternalError("shopping.list_lists: list failed", err, "user_id", user.ID, "family_id", family.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := shoppingListsResponse{
		Lists: make([]shoppingListResponse, 0, len(lists)),
		Total: total,
	}
	for _, list := range lists {
		response.Lists = append(response.Lists, toShoppingListResponse(list, includeItems))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateShoppingList(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	var req createShoppingListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	list, err := h.Shopping.CreateList(r.Context(), shoppingdomain.CreateListInput{
		FamilyID:         family.ID,
		Title:            req.Title,
		ArchivePurchased: req.ArchivePurchased,
	})
	if err != nil {
		h.log.InternalError("shopping.create_list: create failed", err, "user_id", user.ID, "family_id", family.ID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toShoppingListResponse(shoppingdomain.ListWithItems{List: *list}, false))
}

func (h *Handlers) UpdateShoppingList(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	listID, err := parseUintParam(chi.URLParam(r, "list_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid list_id")
		return
	}

	var req updateShoppingListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	list, err := h.Shopping.UpdateList(r.Context(), shoppingdomain.UpdateListInput{
		ID:               listID,
		FamilyID:         family.ID,
		Title:            req.Title,
		ArchivePurchased: req.ArchivePurchased,
	})
	if err != nil {
		if errors.Is(err, shoppingdomain.ErrListNotFound) {
			h.log.BusinessError("shopping.update_list: list not found", err, "user_id", user.ID, "list_id", listID)
			writeError(w, http.StatusNotFound, "shopping_list_not_found", "shopping list not found")
			return
		}
		h.log.InternalError("shopping.update_list: update failed", err, "user_id", user.ID, "list_id", listID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toShoppingListResponse(shoppingdomain.ListWithItems{List: *list}, false))
}

func (h *Handlers) DeleteShoppingList(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	listID, err := parseUintParam(chi.URLParam(r, "list_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid list_id")
		return
	}

	if err := h.Shopping.DeleteList(r.Context(), family.ID, listID); err != nil {
		if errors.Is(err, shoppingdomain.ErrListNotFound) {
			h.log.BusinessError("shopping.delete_list: list not found", err, "user_id", user.ID, "list_id", listID)
			writeError(w, http.StatusNotFound, "shopping_list_not_found", "shopping list not found")
			return
		}
		h.log.InternalError("shopping.delete_list: delete failed", err, "user_id", user.ID, "list_id", listID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListShoppingItems(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	listID, err := parseUintParam(chi.URLParam(r, "list_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid list_id")
		return
	}

	items, total, err := h.Shopping.ListItems(r.Context(), family.ID, listID, archivedFilter(r.URL.Query().Get("archived")))
	if err != nil {
		if errors.Is(err, shoppingdomain.ErrListNotFound) {
			h.log.BusinessError("shopping.list_items: list not found", err, "user_id", user.ID, "list_id", listID)
			writeError(w, http.StatusNotFound, "shopping_list_not_found", "shopping list not found")
			return
		}
		h.log.InternalError("shopping.list_items: list failed", err, "user_id", user.ID, "list_id", listID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := shoppingItemsResponse{
		Items: make([]shoppingItemResponse, 0, len(items)),
		Total: total,
	}
	for _, item := range items {
		response.Items = append(response.Items, toShoppingItemResponse(item))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateShoppingItem(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	listID, err := parseUintParam(chi.URLParam(r, "list_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid list_id")
		return
	}

	var req createShoppingItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	item, err := h.Shopping.CreateItem(r.Context(), family.ID, shoppingdomain.CreateItemInput{
		ListID:   listID,
		Name:     req.Name,
		Quantity: req.Quantity,
		Note:     req.Note,
	})
	if err != nil {
		if errors.Is(err, shoppingdomain.ErrListNotFound) {
			h.log.BusinessError("shopping.create_item: list not found", err, "user_id", user.ID, "list_id", listID)
			writeError(w, http.StatusNotFound, "shopping_list_not_found", "shopping list not found")
			return
		}
		h.log.InternalError("shopping.create_item: create failed", err, "user_id", user.ID, "list_id", listID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toShoppingItemResponse(*item))
}

func (h *Handlers) UpdateShoppingItem(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	itemID, err := parseUintParam(chi.URLParam(r, "item_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid item_id")
		return
	}

	var req updateShoppingItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	input := shoppingdomain.UpdateItemInput{
		ID:          itemID,
		FamilyID:    family.ID,
		Name:        req.Name,
		Quantity:    req.Quantity,
		Note:        req.Note,
		IsPurchased: req.IsPurchased,
	}
	if req.IsPurchased != nil && *req.IsPurchased {
		input.PurchasedBy = &shoppingdomain.MemberSnapshot{ID: user.ID, Name: user.Name()}
	}

	item, err := h.Shopping.UpdateItem(r.Context(), input)
	if err != nil {
		if errors.Is(err, shoppingdomain.ErrItemNotFound) {
			h.log.BusinessError("shopping.update_item: item not found", err, "user_id", user.ID, "item_id", itemID)
			writeError(w, http.StatusNotFound, "shopping_item_not_found", "shopping item not found")
			return
		}
		h.log.InternalError("shopping.update_item: update failed", err, "user_id", user.ID, "item_id", itemID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toShoppingItemResponse(*item))
}

func (h *Handlers) DeleteShoppingItem(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	itemID, err := parseUintParam(chi.URLParam(r, "item_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid item_id")
		return
	}

	if err := h.Shopping.DeleteItem(r.Context(), family.ID, itemID); err != nil {
		if errors.Is(err, shoppingdomain.ErrItemNotFound) {
			h.log.BusinessError("shopping.delete_item: item not found", err, "user_id", user.ID, "item_id", itemID)
			writeError(w, http.StatusNotFound, "shopping_item_not_found", "shopping item not found")
			return
		}
		h.log.InternalError("shopping.delete_item: delete failed", err, "user_id", user.ID, "item_id", itemID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func archivedFilter(value string) shoppingdomain.ArchivedFilter {
	switch value {
	case string(shoppingdomain.ArchivedOnly):
		return shoppingdomain.ArchivedOnly
	case string(shoppingdomain.ArchivedAll):
		return shoppingdomain.ArchivedAll
	default:
		return shoppingdomain.ArchivedExclude
	}
}

func toShoppingListResponse(list shoppingdomain.ListWithItems, includeItems bool) shoppingListResponse {
	response := shoppingListResponse{
		ID:               list.List.ID,
		Title:            list.List.Title,
		ArchivePurchased: list.List.ArchivePurchased,
		ItemsTotal:       list.Counts.ItemsTotal,
		ItemsPurchased:   list.Counts.ItemsPurchased,
		ItemsArchived:    list.Counts.ItemsArchived,
		CreatedAt:        list.List.CreatedAt,
	}
	if includeItems {
		response.Items = make([]shoppingItemResponse, 0, len(list.Items))
		for _, item := range list.Items {
			response.Items = append(response.Items, toShoppingItemResponse(item))
		}
	}
	return response
}

func toShoppingItemResponse(item shoppingdomain.Item) shoppingItemResponse {
	return shoppingItemResponse{
		ID:              item.ID,
		ListID:          item.ListID,
		Name:            item.Name,
		Quantity:        item.Quantity,
		Note:            item.Note,
		IsPurchased:     item.IsPurchased,
		IsArchived:      item.IsArchived,
		PurchasedAt:     item.PurchasedAt,
		PurchasedByID:   item.PurchasedByID,
		PurchasedByName: item.PurchasedByName,
		CreatedAt:       item.CreatedAt,
	}
}
