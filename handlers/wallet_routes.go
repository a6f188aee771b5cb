package handlers

import (
	"xnrt-rewards-system/middleware"
	"xnrt-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupWalletRoutes registers deposit/withdrawal routes plus the admin
// review and catalog-management surface.
func SetupWalletRoutes(app *fiber.App, transactions *services.TransactionService, catalog *services.CatalogService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/wallet/deposit", transactions.RequestDeposit)
	secured.Post("/wallet/withdraw", transactions.RequestWithdrawal)
	secured.Get("/wallet/transactions", transactions.GetMyTransactions)

	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.AdminOnlyMiddleware())

	admin.Get("/transactions/pending", transactions.ListPending)
	admin.Post("/transactions/:id/approve", transactions.Approve)
	admin.Post("/transactions/:id/reject", transactions.Reject)

	admin.Get("/tasks", catalog.ListTasks)
	admin.Post("/tasks", catalog.CreateTask)
	admin.Patch("/tasks/:id/active", catalog.SetTaskActive)
}
