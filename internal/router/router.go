package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/config"
	"portfolio-api/internal/handler"
	"portfolio-api/internal/middleware"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Article      *handler.ArticleHandler
	Project      *handler.ProjectHandler
	Contact      *handler.ContactHandler
	Subscription *handler.SubscriptionHandler
	Upload       *handler.UploadHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Get("/refresh", h.Auth.Refresh)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth).Post("/logout", h.Auth.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		// Public site surface.
		api.Get("/articles", h.Article.List)
		api.Get("/articles/{slug}", h.Article.GetBySlug)
		api.Get("/projects", h.Project.List)
		api.Get("/projects/{slug}", h.Project.GetBySlug)
		api.Post("/contact", h.Contact.SubmitContact)
		api.Post("/work-requests", h.Contact.SubmitWorkRequest)
		api.Post("/subscribe", h.Subscription.Subscribe)
		api.Delete("/subscribe/{email}", h.Subscription.Unsubscribe)

		// Admin CMS surface.
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireAdmin)

			admin.Get("/articles", h.Article.ListAll)
			admin.Post("/articles", h.Article.Create)
			admin.Put("/articles/{id}", h.Article.Update)
			admin.Delete("/articles/{id}", h.Article.Delete)

			admin.Post("/projects", h.Project.Create)
			admin.Put("/projects/{id}", h.Project.Update)
			admin.Delete("/projects/{id}", h.Project.Delete)

			admin.Get("/messages", h.Contact.ListMessages)
			admin.Get("/subscribers", h.Subscription.List)

			admin.Post("/uploads", h.Upload.Upload)
		})
	})

	return r
}
