package handlers

import (
	"xnrt-rewards-system/middleware"
	"xnrt-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes registers profile, balance, check-in and referral routes.
func SetupUserRoutes(app *fiber.App, users *services.UserService, ledger *services.LedgerService, referrals *services.ReferralService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/user/me", users.GetMe)
	secured.Get("/user/balance", ledger.GetMyBalance)
	secured.Post("/user/collect", ledger.CollectEarnings)

	// Check-in is throttled: it's a once-a-day action, a burst means a
	// misbehaving client.
	secured.Post("/user/check-in", middleware.PerUserRateLimit(1, 3), users.CheckIn)

	secured.Post("/referral/apply", referrals.ApplyReferralCode)
	secured.Get("/referral/team", referrals.GetMyTeam)
}
