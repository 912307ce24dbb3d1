package handler

import (
	"errors"
	"net/http"
	"time"

	budgetdomain "famconomy-go/internal/domain/budget"
	"github.com/go-chi/chi/v5"
)

type createTransactionRequest struct {
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Title      string  `json:"title"`
	CategoryID *uint   `json:"category_id"`
}

type updateTransactionRequest struct {
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Title      string  `json:"title"`
	CategoryID *uint   `json:"category_id"`
}

type createCategoryRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
	Emoji *string `json:"emoji"`
}

type updateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Emoji *string `json:"emoji"`
}

type transactionResponse struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Date       string    `json:"date"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Title      string    `json:"title"`
	CategoryID *uint     `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type transactionsResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
}

type categoryResponse struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
	Emoji *string `json:"emoji"`
}

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid from date")
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid to date")
		return
	}
	categoryIDs, err := parseUintCSV(query.Get("category_ids"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid category_ids")
		return
	}
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

	transactions, total, err := h.Budget.ListTransactions(r.Context(), family.ID, budgetdomain.ListFilter{
		From:        from,
		To:          to,
		CategoryIDs: categoryIDs,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		h.log.InternalError("budget.list_transactions: list failed", err, "user_id", user.ID, "family_id", family.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := transactionsResponse{
		Transactions: make([]transactionResponse, 0, len(transactions)),
		Total:        total,
	}
	for _, transaction := range transactions {
		response.Transactions = append(response.Transactions, toTransactionResponse(transaction))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	date, err := parseDateRequired(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "amount must be positive")
		return
	}

	transaction, err := h.Budget.CreateTransaction(r.Context(), budgetdomain.CreateTransactionInput{
		FamilyID:   family.ID,
		UserID:     user.ID,
		Date:       date,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Title:      req.Title,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.writeBudgetError(w, err, "budget.create_transaction", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(*transaction))
}

func (h *Handlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	transactionID, err := parseUintParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	date, err := parseDateRequired(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "amount must be positive")
		return
	}

	transaction, err := h.Budget.UpdateTransaction(r.Context(), budgetdomain.UpdateTransactionInput{
		ID:         transactionID,
		FamilyID:   family.ID,
		Date:       date,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Title:      req.Title,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.writeBudgetError(w, err, "budget.update_transaction", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(*transaction))
}

func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	transactionID, err := parseUintParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	if err := h.Budget.DeleteTransaction(r.Context(), family.ID, transactionID); err != nil {
		h.writeBudgetError(w, err, "budget.delete_transaction", user.ID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	categories, err := h.Budget.ListCategories(r.Context(), family.ID)
	if err != nil {
		h.log.InternalError("budget.list_categories: list failed", err, "user_id", user.ID, "family_id", family.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, toCategoryResponse(category))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	category, err := h.Budget.CreateCategory(r.Context(), budgetdomain.CreateCategoryInput{
		FamilyID: family.ID,
		Name:     req.Name,
		Color:    req.Color,
		Emoji:    req.Emoji,
	})
	if err != nil {
		h.writeBudgetError(w, err, "budget.create_category", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(*category))
}

func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	categoryID, err := parseUintParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	category, err := h.Budget.UpdateCategory(r.Context(), budgetdomain.UpdateCategoryInput{
		ID:       categoryID,
		FamilyID: family.ID,
		Name:     req.Name,
		Color:    req.Color,
		Emoji:    req.Emoji,
	})
	if err != nil {
		h.writeBudgetError(w, err, "budget.update_category", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(*category))
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	categoryID, err := parseUintParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	if err := h.Budget.DeleteCategory(r.Context(), family.ID, categoryID); err != nil {
		h.writeBudgetError(w, err, "budget.delete_category", user.ID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) BudgetSummary(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	filter, ok := h.summaryFilter(w, r)
	if !ok {
		return
	}

	result, err := h.Budget.Summary(r.Context(), family.ID, filter)
	if err != nil {
		h.log.InternalError("budget.summary: summary failed", err, "user_id", user.ID, "family_id", family.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) BudgetByCategory(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	filter, ok := h.summaryFilter(w, r)
	if !ok {
		return
	}

	rows, err := h.Budget.ByCategory(r.Context(), family.ID, filter)
	if err != nil {
		h.log.InternalError("budget.by_category: query failed", err, "user_id", user.ID, "family_id", family.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	if rows == nil {
		rows = []budgetdomain.ByCategoryRow{}
	}

	writeJSON(w, http.StatusOK, rows)
}

func (h *Handlers) BudgetMonthly(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	filter, ok := h.summaryFilter(w, r)
	if !ok {
		return
	}

	rows, err := h.Budget.Monthly(r.Context(), family.ID, filter)
	if err != nil {
		h.log.InternalError("budget.monthly: query failed", err, "user_id", user.ID, "family_id", family.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	if rows == nil {
		rows = []budgetdomain.MonthlyRow{}
	}

	writeJSON(w, http.StatusOK, rows)
}

func (h *Handlers) summaryFilter(w http.ResponseWriter, r *http.Request) (budgetdomain.SummaryFilter, bool) {
	query := r.URL.Query()
	from, err := parseDateRequired(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid from date")
		return budgetdomain.SummaryFilter{}, false
	}
	to, err := parseDateRequired(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid to date")
		return budgetdomain.SummaryFilter{}, false
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "invalid_request", "to must not be before from")
		return budgetdomain.SummaryFilter{}, false
	}
	return budgetdomain.SummaryFilter{From: from, To: to}, true
}

func (h *Handlers) writeBudgetError(w http.ResponseWriter, err error, operation string, userID uint) {
	switch {
	case errors.Is(err, budgetdomain.ErrTransactionNotFound):
		h.log.BusinessError(operation+": transaction not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "transaction_not_found", "transaction not found")
	case errors.Is(err, budgetdomain.ErrCategoryNotFound):
		h.log.BusinessError(operation+": category not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "category_not_found", "category not found")
	case errors.Is(err, budgetdomain.ErrInvalidCurrency):
		h.log.BusinessError(operation+": invalid currency", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, "invalid_request", "currency must be a 3-letter code")
	case errors.Is(err, budgetdomain.ErrInvalidColor):
		h.log.BusinessError(operation+": invalid color", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, "invalid_request", "color must be a hex code like #AABBCC")
	default:
		h.log.InternalError(operation+": failed", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}

func toTransactionResponse(transaction budgetdomain.Transaction) transactionResponse {
	return transactionResponse{
		ID:         transaction.ID,
		UserID:     transaction.UserID,
		Date:       transaction.Date.Format("2006-01-02"),
		Amount:     transaction.Amount,
		Currency:   transaction.Currency,
		Title:      transaction.Title,
		CategoryID: transaction.CategoryID,
		CreatedAt:  transaction.CreatedAt,
	}
}

func toCategoryResponse(category budgetdomain.Category) categoryResponse {
	return categoryResponse{
		ID:    category.ID,
		Name:  category.Name,
		Color: category.Color,
		Emoji: category.Emoji,
	}
}
