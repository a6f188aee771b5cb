package handlers

import (
	"xnrt-rewards-system/middleware"
	"xnrt-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupEarnRoutes registers the reward-producing surfaces: tasks,
// achievements, mining sessions and staking positions.
func SetupEarnRoutes(app *fiber.App, progress *services.ProgressService, mining *services.MiningService, staking *services.StakingService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/tasks", progress.GetMyTasks)
	secured.Get("/achievements", progress.GetMyAchievements)

	// Start/claim/boost are cheap to spam, so they share a bucket.
	claimLimit := middleware.PerUserRateLimit(2, 5)

	secured.Get("/mining/session", mining.GetMySession)
	secured.Post("/mining/start", claimLimit, mining.StartMining)
	secured.Post("/mining/claim", claimLimit, mining.ClaimMining)
	secured.Post("/mining/ad-boost", claimLimit, mining.AdBoost)

	secured.Get("/staking/tiers", staking.GetTiers)
	secured.Get("/staking/positions", staking.GetMyStakes)
	secured.Post("/staking/positions", claimLimit, staking.CreateStake)
	secured.Post("/staking/positions/:id/withdraw", claimLimit, staking.Withdraw)
}
