package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/quickai/server/internal/http/handlers"
	"github.com/quickai/server/internal/middleware"
)

// Options configures the router beyond the handler container.
type Options struct {
	JWTSecret       string
	RateLimitPerMin int
	StaticDir       string
}

// NewRouter assembles the service routes. All /api routes sit behind bearer
// auth and per-IP rate limiting; health stays open.
func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer, chimw.Logger)

	r.Get("/v1/healthz", app.Health)

	if opts.StaticDir != "" {
		r.Handle("/static/*", stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.Dir(opts.StaticDir))))
	}

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}
		r.Use(middleware.AuthJWT(opts.JWTSecret))

		r.Route("/ai", func(r chi.Router) {
			r.Post("/generate-article", app.GenerateArticle)
			r.Post("/generate-blog-title", app.GenerateBlogTitle)
			r.Post("/generate-image", app.GenerateImage)
			r.Post("/remove-image-background", app.RemoveBackground)
			r.Post("/remove-image-object", app.RemoveObject)
			r.Post("/resume-review", app.ResumeReview)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/get-user-creations", app.GetUserCreations)
			r.Get("/get-published-creations", app.GetPublishedCreations)
			r.Post("/toggle-like-creation", app.ToggleLikeCreation)
		})
	})

	return r
}
