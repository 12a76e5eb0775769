package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/ports/repository"
	"inet-marketplace/internal/infra/logging"
	"inet-marketplace/internal/usecase"
)

// RateLimiter bounds how often a caller may hit the provider-facing
// endpoints. Nil disables limiting (unit tests).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Status polls ride a frontend timer; cap them well above the expected
// 3s cadence but low enough to shield the provider.
const (
	pollLimit  = 30
	pollWindow = time.Minute
)

type Server struct {
	purchaseUC  usecase.PurchaseUseCase
	reconcileUC usecase.ReconcileUseCase
	promoUC     usecase.PromoUseCase
	catalogUC   usecase.CatalogUseCase
	statsUC     usecase.StatsUseCase
	notifs      repository.NotificationRepository

	auth    *AuthManager
	apiKey  string
	limiter RateLimiter
	log     *zerolog.Logger
}

func NewServer(
	purchaseUC usecase.PurchaseUseCase,
	reconcileUC usecase.ReconcileUseCase,
	promoUC usecase.PromoUseCase,
	catalogUC usecase.CatalogUseCase,
	statsUC usecase.StatsUseCase,
	notifs repository.NotificationRepository,
	auth *AuthManager,
	adminAPIKey string,
	limiter RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		purchaseUC:  purchaseUC,
		reconcileUC: reconcileUC,
		promoUC:     promoUC,
		catalogUC:   catalogUC,
		statsUC:     statsUC,
		notifs:      notifs,
		auth:        auth,
		apiKey:      adminAPIKey,
		limiter:     limiter,
		log:         logger,
	}
}

// Router assembles the full HTTP surface.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.traceMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Authenticated user surface.
		r.Group(func(r chi.Router) {
			r.Use(s.auth.userAuth)

			r.Get("/plans", s.listPlans)
			r.Get("/services", s.listServices)
			r.Get("/videos", s.listVideos)
			r.Post("/videos/{id}/view", s.recordView)
			r.Get("/videos/{id}/unlock", s.videoUnlock)

			r.Post("/purchases/service", s.initiateService)
			r.Post("/purchases/service/manual", s.initiateManualService)
			r.Post("/purchases/plan", s.initiatePlan)
			r.Post("/purchases/video", s.initiateVideo)
			r.Get("/purchases", s.listPurchases)
			r.Get("/purchases/{id}", s.getPurchase)
			r.Post("/purchases/{id}/poll", s.pollPurchase)
			r.Post("/purchases/{id}/timeout", s.timeoutPurchase)

			r.Post("/promo/validate", s.validatePromo)
			r.Get("/me/subscription", s.mySubscription)
			r.Get("/notifications", s.listNotifications)
		})

		// Admin surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth(s.apiKey))

			r.Get("/stats", s.adminStats)
			r.Post("/orders/{id}/verify", s.adminVerify)
			r.Patch("/orders/{id}/fulfillment", s.adminFulfillment)

			r.Get("/promos", s.adminListPromos)
			r.Post("/promos", s.adminCreatePromo)
			r.Put("/promos/{id}", s.adminUpdatePromo)
			r.Delete("/promos/{id}", s.adminDeletePromo)

			r.Get("/plans", s.adminListPlans)
			r.Post("/plans", s.adminCreatePlan)
			r.Put("/plans/{id}", s.adminUpdatePlan)
			r.Delete("/plans/{id}", s.adminDeletePlan)
		})
	})

	return r
}

// traceMiddleware stamps every request with a trace id for log correlation.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Request-Id")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", traceID)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), traceID)))
	})
}

// allowPoll enforces the per-user poll rate limit.
func (s *Server) allowPoll(ctx context.Context, userID string) error {
	if s.limiter == nil {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, "rate_limit:"+userID+":poll", pollLimit, pollWindow)
	if err != nil {
		// Redis being down must not take payment polling with it.
		s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		return nil
	}
	if !ok {
		return domain.ErrRateLimited
	}
	return nil
}
