package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"server/internal/http/handlers"
	"server/internal/middleware"
	"server/internal/ws"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
	)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(app.Config.AllowedOrigins))

	// Submission endpoints are rate limited; status polling is not.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
		r.Post("/generate", app.Generate)
		r.Post("/send", app.Send)
	})

	r.Get("/status/{job_id}", app.Status)
	r.Get("/health", app.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", ws.Handler(app.Hub, app.Logger))

	return r
}
