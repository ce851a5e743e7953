package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/one-time-unlock-service/internal/health"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/handler"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/middleware"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/response"
	"github.com/sandeepkv93/one-time-unlock-service/internal/security"
	"github.com/sandeepkv93/one-time-unlock-service/internal/service"
)

type Dependencies struct {
	RedeemHandler     *handler.RedeemHandler
	FilesHandler      *handler.FilesHandler
	OperatorHandler   *handler.OperatorHandler
	SessionGate       *service.SessionGate
	SessionCookieName string
	OperatorAuth      *security.OperatorAuthenticator
	Readiness         *health.ProbeRunner
	BodyLimitBytes    int64
	EnableOTelHTTP    bool
}

func NewRouter(dep Dependencies) http.Handler {
	bodyLimit := dep.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BodyLimit(bodyLimit))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, response.CodeDependencyUnready, "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(dep.SessionGate, dep.SessionCookieName))
			r.Post("/redeem", dep.RedeemHandler.Redeem)
			r.Get("/session", dep.RedeemHandler.Session)
			// The resource gateway authorizes every files request.
			r.Route("/files", func(r chi.Router) {
				r.Get("/", dep.FilesHandler.List)
				r.Get("/{name}", dep.FilesHandler.Download)
			})
		})

		r.Route("/operator", func(r chi.Router) {
			r.Post("/token", dep.OperatorHandler.Token)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOperator(dep.OperatorAuth))
				r.Post("/codes", dep.OperatorHandler.Generate)
				r.Get("/codes", dep.OperatorHandler.List)
				r.Get("/export", dep.OperatorHandler.Export)
				r.Get("/stats", dep.OperatorHandler.Stats)
			})
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
