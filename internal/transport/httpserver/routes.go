package httpserver

import (
	"net/http"
	"time"

	"famconomy-go/internal/config"
	"famconomy-go/internal/transport/httpserver/handler"
	authmw "famconomy-go/internal/transport/httpserver/middleware"
	"famconomy-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, profiles authmw.ProfileSaver, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSAllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewJWTAuth(cfg.Auth, profiles, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)
			if cfg.OfflineSyncEnabled {
				r.Post("/sync", handlers.SyncBatch)
			}

			r.Get("/families/me", handlers.GetFamilyMe)
			r.Post("/families", handlers.CreateFamily)
			r.Post("/families/join", handlers.JoinFamily)
			r.Post("/families/leave", handlers.LeaveFamily)
			r.Patch("/families/me", handlers.UpdateFamily)
			r.Get("/families/me/members", handlers.ListFamilyMembers)
			r.Delete("/families/me/members/{user_id}", handlers.RemoveFamilyMember)

			r.Get("/families/{family_id}/guidelines", handlers.ListGuidelines)
			r.Post("/families/{family_id}/guidelines", handlers.CreateGuideline)
			r.Post("/families/{family_id}/guidelines/{guideline_id}/approve", handlers.ApproveGuideline)
			r.Patch("/families/{family_id}/guidelines/{guideline_id}", handlers.UpdateGuideline)

			r.Get("/shopping-lists", handlers.ListShoppingLists)
			r.Post("/shopping-lists", handlers.CreateShoppingList)
			r.Patch("/shopping-lists/{list_id}", handlers.UpdateShoppingList)
			r.Delete("/shopping-lists/{list_id}", handlers.DeleteShoppingList)
			r.Get("/shopping-lists/{list_id}/items", handlers.ListShoppingItems)
			r.Post("/shopping-lists/{list_id}/items", handlers.CreateShoppingItem)
			r.Patch("/shopping-items/{item_id}", handlers.UpdateShoppingItem)
			r.Delete("/shopping-items/{item_id}", handlers.DeleteShoppingItem)

			r.Get("/transactions", handlers.ListTransactions)
			r.Post("/transactions", handlers.CreateTransaction)
			r.Put("/transactions/{id}", handlers.UpdateTransaction)
			r.Delete("/transactions/{id}", handlers.DeleteTransaction)

			r.Get("/categories", handlers.ListCategories)
			r.Post("/categories", handlers.CreateCategory)
			r.Patch("/categories/{id}", handlers.UpdateCategory)
			r.Delete("/categories/{id}", handlers.DeleteCategory)

			r.Get("/budget/summary", handlers.BudgetSummary)
			r.Get("/budget/by-category", handlers.BudgetByCategory)
			r.Get("/budget/monthly", handlers.BudgetMonthly)

			r.Get("/chores", handlers.ListChores)
			r.Post("/chores", handlers.CreateChore)
			r.Patch("/chores/{id}", handlers.UpdateChore)
			r.Delete("/chores/{id}", handlers.DeleteChore)
			r.Post("/chores/{id}/complete", handlers.CompleteChore)
			r.Get("/chores/{id}/completions", handlers.ListChoreCompletions)
		})
	})

	return r
}
