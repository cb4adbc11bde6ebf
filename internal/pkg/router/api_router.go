package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/PromptBay/promptbay/app/controllers"
	"github.com/PromptBay/promptbay/internal/pkg/cache"
	"github.com/PromptBay/promptbay/internal/pkg/env"
	"github.com/PromptBay/promptbay/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    newLimiterStorage(),
	}))

	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "PromptBay API",
		})
	})

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Get("/me", middleware.BearerAuthMiddleware(), controllers.HandleProfile)
	auth.Put("/me", middleware.BearerAuthMiddleware(), controllers.HandleUpdateProfile)

	// Payments. Verify and webhook carry their own authentication: the
	// verify payload is self-authenticating via the checkout signature,
	// the webhook via the raw-body signature. One canonical handler per
	// endpoint.
	payment := api.Group("/payment")
	payment.Post("/create-order", middleware.BearerAuthMiddleware(), controllers.HandleCreatePaymentOrder)
	payment.Post("/verify", controllers.HandleVerifyPayment)
	payment.Post("/webhook", controllers.HandleRazorpayWebhook)

	// Listings
	api.Get("/prompts", controllers.HandleListPrompts)
	api.Post("/prompts", middleware.BearerAuthMiddleware(), controllers.HandleCreatePrompt)
	api.Get("/prompts/mine", middleware.BearerAuthMiddleware(), controllers.HandleMyPrompts)
	api.Get("/prompts/:slug", middleware.OptionalBearerAuth(), controllers.HandleGetPromptBySlug)
	api.Get("/prompts/:slug/unlock", middleware.OptionalBearerAuth(), controllers.HandleUnlockPrompt)
	api.Put("/prompts/:id", middleware.BearerAuthMiddleware(), controllers.HandleUpdatePrompt)
	api.Delete("/prompts/:id", middleware.BearerAuthMiddleware(), controllers.HandleDeletePrompt)

	// Engagement
	api.Get("/prompts/:id/reviews", controllers.HandleGetReviews)
	api.Post("/prompts/:id/reviews", middleware.BearerAuthMiddleware(), controllers.HandleUpsertReview)
	api.Get("/prompts/:id/comments", controllers.HandleGetComments)
	api.Post("/prompts/:id/comments", middleware.BearerAuthMiddleware(), controllers.HandleCreateComment)
	api.Delete("/comments/:id", middleware.BearerAuthMiddleware(), controllers.HandleDeleteComment)
	api.Post("/prompts/:id/favorite", middleware.BearerAuthMiddleware(), controllers.HandleAddFavorite)
	api.Delete("/prompts/:id/favorite", middleware.BearerAuthMiddleware(), controllers.HandleRemoveFavorite)
	api.Get("/favorites", middleware.BearerAuthMiddleware(), controllers.HandleMyFavorites)
	api.Post("/prompts/:id/report", middleware.BearerAuthMiddleware(), controllers.HandleReportPrompt)

	// Library
	api.Get("/purchases", middleware.BearerAuthMiddleware(), controllers.HandleMyPurchases)

	// Discovery
	api.Get("/search", controllers.HandleSearchPrompts)
	api.Get("/trending", controllers.HandleTrendingPrompts)
	api.Get("/featured", controllers.HandleFeaturedPrompts)
	api.Get("/categories", controllers.HandleGetCategories)
	api.Get("/categories/:id/prompts", controllers.HandlePromptsByCategory)
	api.Get("/tags/popular", controllers.HandlePopularTags)

	// Media uploads
	api.Post("/uploads/presign", middleware.BearerAuthMiddleware(), controllers.HandlePresignUpload)

	// Admin
	admin := api.Group("/admin", middleware.BearerAuthMiddleware(), middleware.RequireAdmin)
	admin.Get("/prompts", controllers.HandleAdminListPrompts)
	admin.Patch("/prompts/:id", controllers.HandleAdminUpdatePrompt)
	admin.Get("/purchases", controllers.HandleAdminListPurchases)
	admin.Get("/reports", controllers.HandleAdminListReports)
	admin.Patch("/reports/:id", controllers.HandleAdminResolveReport)
	admin.Post("/categories", controllers.HandleCreateCategory)
}

// newLimiterStorage backs the rate limiter with Redis so limits hold
// across instances. Limiter state lives in database 1; the cache uses
// database 0.
func newLimiterStorage() *redis.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient := cache.GetClient(); cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
