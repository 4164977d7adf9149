package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/auth"
	"github.com/societyhub/community-server/internal/middleware"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/uploads"
)

// RouterConfig carries the handlers and cross-cutting pieces the API router wires together.
type RouterConfig struct {
	Logger         *zap.Logger
	Issuer         *auth.TokenIssuer
	Revocations    auth.RevocationStore
	Limiter        middleware.Limiter
	AllowedOrigins []string
	UploadDir      string // served under /uploads/ when set

	Health     *HealthHandler
	Auth       *AuthHandler
	Users      *UserHandler
	Complaints *ComplaintHandler
	GatePasses *GatePassHandler
	Bookings   *BookingHandler
	Broadcasts *BroadcastHandler
	Polls      *PollHandler
	Tasks      *TaskHandler
	SOS        *SOSHandler
}

// NewRouter builds the full HTTP handler
func NewRouter(cfg RouterConfig) http.Handler {
	sugar := cfg.Logger.Sugar()
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Rate limiting
	if cfg.Limiter != nil {
		r.Use(middleware.RateLimit(cfg.Limiter, sugar))
	}

	r.Handle("/metrics", promhttp.Handler())
	if cfg.UploadDir != "" {
		r.Handle(uploads.URLPrefix+"*", http.StripPrefix(uploads.URLPrefix, http.FileServer(http.Dir(cfg.UploadDir))))
	}

	requireAuth := middleware.RequireAuth(cfg.Issuer, cfg.Revocations, sugar)
	role := middleware.RequireRole

	const (
		resident = models.RoleResident
		admin    = models.RoleAdmin
		guard    = models.RoleGuard
		provider = models.RoleServiceProvider
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", cfg.Health.Check)
		r.Get("/health/ready", cfg.Health.Ready)

		// Public auth endpoints
		r.Post("/auth/signup", cfg.Auth.Signup)
		r.Post("/auth/signin", cfg.Auth.Signin)

		// Everything else requires a session
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/signout", cfg.Auth.Signout)
				r.Get("/me", cfg.Auth.Me)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/allusers", cfg.Users.List)
				r.Get("/allusers/{role}", cfg.Users.ListByRole)
				r.Get("/getuser/{id}", cfg.Users.Get)
				r.Post("/updateuser/{id}", cfg.Users.Update) // self or admin, checked by the service
				r.With(role(admin)).Delete("/deleteuser/{id}", cfg.Users.Delete)
			})

			r.Route("/complaints", func(r chi.Router) {
				r.With(role(resident)).Post("/raise-complaint", cfg.Complaints.Raise)
				r.Get("/getComplaints/{userId}", cfg.Complaints.ListByUser)
				r.With(role(admin, guard)).Get("/getAllComplaints", cfg.Complaints.ListAll)
				r.With(role(admin)).Post("/updateComplaint/{id}", cfg.Complaints.UpdateStatus)
				r.Delete("/deleteComplaint/{id}", cfg.Complaints.Delete) // owner or admin
			})

			r.Route("/gatepass", func(r chi.Router) {
				r.With(role(resident)).Post("/requestGatepass", cfg.GatePasses.Request)
				r.With(role(guard, admin)).Get("/viewAllVisitorGatepass", cfg.GatePasses.ListAll)
				r.With(role(guard)).Get("/allpendinggatepasses", cfg.GatePasses.ListPending)
				r.With(role(resident)).Get("/mygatepass", cfg.GatePasses.ListMine)
				r.With(role(guard, admin)).Get("/visitorlog", cfg.GatePasses.VisitorLog)
				r.With(role(guard)).Post("/updateGatepassStatus/{id}", cfg.GatePasses.UpdateStatus)
			})

			r.Route("/service-booking", func(r chi.Router) {
				r.With(role(resident)).Post("/book-service", cfg.Bookings.Book)
				r.With(role(resident)).Get("/resident-booking", cfg.Bookings.ResidentBookings)
				r.With(role(provider)).Get("/provider-booking", cfg.Bookings.ProviderBookings)
				r.With(role(admin)).Get("/allbookings", cfg.Bookings.AllBookings)
				r.Get("/all-providers", cfg.Bookings.Providers)
				r.With(role(provider)).Get("/provider-info", cfg.Bookings.ProviderInfo)
				r.With(role(provider)).Post("/status/{id}", cfg.Bookings.UpdateStatus)
			})

			r.Route("/broadcast", func(r chi.Router) {
				r.With(role(admin)).Post("/createBroadcast", cfg.Broadcasts.Create)
				r.Get("/getAllBroadcast", cfg.Broadcasts.List)
				r.With(role(admin)).Post("/updateBroadcast/{id}", cfg.Broadcasts.Update)
				r.With(role(admin)).Delete("/deleteBroadcast/{id}", cfg.Broadcasts.Delete)
			})

			r.Route("/poll", func(r chi.Router) {
				r.With(role(admin)).Post("/createpoll", cfg.Polls.Create)
				r.Get("/getallpolls", cfg.Polls.List)
				r.Get("/polls/active", cfg.Polls.Active)
				r.Get("/poll/{id}", cfg.Polls.Get)
				r.With(role(admin)).Get("/poll/{id}/analytics", cfg.Polls.Analytics)
				r.With(role(admin)).Delete("/poll/{id}", cfg.Polls.Delete)
				r.Post("/votepoll/{id}", cfg.Polls.Vote) // voter roles checked with the vote
			})

			r.Route("/guardtask", func(r chi.Router) {
				r.With(role(admin)).Post("/create", cfg.Tasks.Create)
				r.With(role(guard)).Get("/mytasks", cfg.Tasks.Mine)
				r.With(role(admin)).Get("/unachieved", cfg.Tasks.Unachieved)
				r.With(role(guard)).Post("/update/{id}", cfg.Tasks.UpdateStatus)
				r.With(role(admin)).Post("/achieve/{id}", cfg.Tasks.Achieve)
				r.With(role(admin)).Delete("/deleteTask/{id}", cfg.Tasks.Delete)
			})

			r.Route("/sos", func(r chi.Router) {
				r.Post("/create", cfg.SOS.Create)
				r.Get("/all", cfg.SOS.List)
				r.Post("/respond/{id}", cfg.SOS.Respond)
			})
		})
	})

	return r
}
