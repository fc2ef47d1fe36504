package api

import (
	"github.com/Ghazanfar1991/syncrio/internal/api/handlers"
	"github.com/Ghazanfar1991/syncrio/internal/api/middleware"
	"github.com/Ghazanfar1991/syncrio/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Platform  *handlers.PlatformHandler
	Post      *handlers.PostHandler
	Analytics *handlers.AnalyticsHandler
	User      *handlers.UserHandler
	Settings  *handlers.SettingsHandler
	ApiKeys   *handlers.ApiKeyHandler
	Payment   *handlers.PaymentHandler
	Admin     *handlers.AdminHandler
}

func Register(app *fiber.App, h Handlers, auth *middleware.AuthMiddleware) {
	app.Use(metrics.Middleware())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "data": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/login", h.Auth.Login)
	app.Get("/login/callback", h.Auth.LoginCallbackHandler)
	app.Post("/logout", h.Auth.Logout)

	app.Post("/webhooks/payments", h.Payment.PaymentWebhook)

	// Platform callbacks carry the user in the state token, not the session.
	app.Get("/api/social/:platform/callback", h.Platform.CallbackHandler)

	api := app.Group("/api", auth.AuthMiddleware())

	api.Get("/user/info", h.User.GetUserInfo)
	api.Delete("/user", h.User.DeleteAccount)
	api.Get("/usage", h.User.GetUsage)

	api.Get("/settings/info", h.Settings.GetSettingsInfo)
	api.Put("/settings", h.Settings.UpdateSettings)

	api.Post("/api_keys", h.ApiKeys.CreateApiKey)
	api.Get("/api_keys", h.ApiKeys.ListKeys)
	api.Delete("/api_keys/:id", h.ApiKeys.RemoveAPIKey)

	api.Get("/social/accounts", h.Platform.ListSocialAccounts)
	api.Delete("/social/accounts/:id", h.Platform.DeleteSocialAccount)
	api.Get("/social/:platform/connect", h.Platform.Connect)

	api.Post("/posts", h.Post.CreatePost)
	api.Get("/posts", h.Post.ListPosts)
	api.Get("/posts/:id", h.Post.GetPost)
	api.Put("/posts/:id", h.Post.UpdatePost)
	api.Delete("/posts/:id", h.Post.RemovePost)
	api.Post("/posts/:id/schedule", h.Post.SchedulePost)
	api.Post("/posts/:id/approve", h.Post.ApprovePost)
	api.Post("/posts/:id/publish", h.Post.PublishPost)

	api.Get("/analytics/overview", h.Analytics.Overview)
	api.Get("/analytics/posts/:id", h.Analytics.PostAnalytics)
	api.Post("/analytics/refresh", h.Analytics.Refresh)

	admin := api.Group("/admin", auth.AdminOnly())
	admin.Get("/metrics", h.Admin.SystemMetrics)
	admin.Get("/ai-models", h.Admin.ListAIModels)
	admin.Post("/ai-models", h.Admin.CreateAIModel)
	admin.Put("/ai-models/:id", h.Admin.UpdateAIModel)
	admin.Post("/ai-models/:id/default", h.Admin.SetDefaultAIModel)
}
