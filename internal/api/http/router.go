package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pao-metrics/internal/api/http/handlers"
	"github.com/spec-kit/pao-metrics/internal/auth"
	"github.com/spec-kit/pao-metrics/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Shells       handlers.ShellSource
	ClientCookie string
	SecureCookie bool

	Health  *handlers.HealthHandler
	Metrics *handlers.MetricsHandler
	Auth    *handlers.AuthHandler
	State   *handlers.StateHandler
	Kpi     *handlers.KpiHandler
	Plan    *handlers.PlanHandler
	Social  *handlers.SocialHandler
	Profile *handlers.ProfileHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Get)

	client := auth.ClientMiddleware(cfg.ClientCookie, cfg.SecureCookie)
	shell := handlers.LoadShell(cfg.Shells)

	// The shell is loaded ahead of the auth calls so it is already
	// subscribed when the resulting auth event is published.
	authGroup := app.Group("/auth", client, shell)
	authGroup.Post("/sign-up", cfg.Auth.SignUp)
	authGroup.Post("/sign-in", cfg.Auth.SignIn)
	authGroup.Post("/sign-out", cfg.Auth.SignOut)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Patch("/user", cfg.Auth.UpdateUser)

	api := app.Group("/api", client, shell)
	api.Get("/state", cfg.State.State)
	api.Get("/view", cfg.State.View)
	api.Put("/view", cfg.State.SetView)
	api.Post("/session/revalidate", cfg.State.Revalidate)
	api.Get("/notifications", cfg.State.Notifications)
	api.Delete("/notifications/:id", cfg.State.DismissNotification)

	view := handlers.RequireView
	api.Get("/dashboard", view(domain.ViewDashboard), cfg.Kpi.Dashboard)
	api.Get("/kpi", view(domain.ViewTable), cfg.Kpi.ListEntries)
	api.Post("/kpi", view(domain.ViewDataEntry), cfg.Kpi.CreateEntry)
	api.Get("/campaigns", view(domain.ViewCampaigns), cfg.Kpi.ListCampaigns)
	api.Post("/campaigns", view(domain.ViewCampaigns), cfg.Kpi.CreateCampaign)
	api.Get("/goals", view(domain.ViewGoals), cfg.Kpi.ListGoals)
	api.Post("/goals", view(domain.ViewGoals), cfg.Kpi.CreateGoal)

	planGroup := api.Group("/plan", view(domain.ViewPlanBuilder))
	planGroup.Get("", cfg.Plan.State)
	planGroup.Post("/start", cfg.Plan.Start)
	planGroup.Post("/next", cfg.Plan.Next)
	planGroup.Post("/previous", cfg.Plan.Previous)
	planGroup.Post("/generate", cfg.Plan.Generate)
	planGroup.Post("/reset", cfg.Plan.Reset)

	socialGroup := api.Group("/social", view(domain.ViewSocialMedia))
	socialGroup.Get("/entries", cfg.Social.ListEntries)
	socialGroup.Post("/entries", cfg.Social.CreateEntry)
	socialGroup.Delete("/entries/:id", cfg.Social.DeleteEntry)
	socialGroup.Get("/connections", cfg.Social.ListConnections)
	socialGroup.Put("/connections/:network", cfg.Social.UpdateConnection)

	api.Get("/profile", view(domain.ViewProfile), cfg.Profile.Get)
	api.Patch("/profile", view(domain.ViewProfile), cfg.Profile.Patch)
}
