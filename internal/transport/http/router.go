package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	authhandler "presadmin/internal/auth/handler"
	platformmetrics "presadmin/internal/platform/metrics"
	reviewhandler "presadmin/internal/review/handler"
	authmiddleware "presadmin/pkg/platform/middleware/auth"
	"presadmin/pkg/platform/middleware/metadata"
	"presadmin/pkg/platform/middleware/request"
	"presadmin/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router needs; transport stays free of
// business logic.
type Deps struct {
	Auth        *authhandler.Handler
	Review      *reviewhandler.Handler
	Tokens      authmiddleware.TokenVerifier
	Metrics     *platformmetrics.Metrics
	FrontendURL string
	Logger      *slog.Logger
}

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{d.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/", handleRoot)
	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	d.Auth.Register(r)
	d.Review.Register(r, authmiddleware.RequireStaff(d.Tokens, d.Logger))

	return r
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"message":"Presentation Admin API","docs":"/api"}`))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
