package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/folio/api/http/handlers"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Profile      *handlers.ProfileHandler
	Resume       *handlers.ResumeHandler
	Applications *handlers.ApplicationHandler
}

// Register wires all HTTP routes onto given Fiber app.
// authMW protects everything except health and auth endpoints.
func Register(app *fiber.App, h Handlers, authMW fiber.Handler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", h.Health.Health)
	v1.Get("/ready", h.Health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", h.Auth.Register)
	a.Post("/login", h.Auth.Login)

	p := v1.Group("/profile", authMW)
	p.Get("/", h.Profile.Get)
	p.Patch("/", h.Profile.Update)
	p.Post("/skills", h.Profile.AddSkill)

	rg := v1.Group("/resume", authMW)
	rg.Post("/ingest", h.Resume.Ingest)

	ag := v1.Group("/applications", authMW)
	ag.Get("/", h.Applications.List)
	ag.Post("/", h.Applications.Create)
	// stats до /:id, иначе "stats" разберётся как id
	ag.Get("/stats", h.Applications.Stats)
	ag.Get("/:id", h.Applications.Get)
	ag.Patch("/:id", h.Applications.Update)
	ag.Delete("/:id", h.Applications.Delete)
	ag.Post("/:id/status", h.Applications.Advance)
	ag.Put("/:id/notes/:stage", h.Applications.SetNote)
}
