package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"farsha/internal/booking"
	"farsha/internal/config"
	"farsha/internal/customer"
	"farsha/internal/logging"
	"farsha/internal/models"
	"farsha/internal/partner"
	"farsha/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router wires together.
type Deps struct {
	Customers *session.CustomerStore
	Partners  *session.PartnerStore
	Booking   *booking.Service
	Pages     *customer.Service
	Partner   *partner.Service
	// Ready reports whether backing storage is reachable. Nil means
	// always ready.
	Ready func(ctx context.Context) error
}

// Server is the JSON front of the marketplace.
type Server struct {
	cfg     config.HTTPConfig
	deps    Deps
	logger  *zerolog.Logger
	limiter *clientLimiter
	server  *http.Server
	now     func() time.Time
}

func NewServer(cfg config.HTTPConfig, deps Deps, logger *zerolog.Logger) *Server {
	s := &Server{cfg: cfg, deps: deps, logger: logging.Component(logger, "web"), now: time.Now}
	if cfg.RateLimit.RPS > 0 {
		s.limiter = newClientLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// SweepLimiters drops rate limit buckets of clients idle longer than idle.
func (s *Server) SweepLimiters(idle time.Duration) int {
	if s.limiter == nil {
		return 0
	}
	return s.limiter.sweep(idle)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if s.cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.accessLog, s.recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(s.visitor, s.rateLimit)

		r.Get("/", s.handleHome)
		r.Get("/search", s.handleSearch)
		r.Get("/cities/{id}/areas", s.handleAreas)
		r.Get("/business/{id}", s.handleBusiness)
		r.Get("/session", s.handleSession)
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post("/send-otp", s.handleSendOTP)
		r.Post("/verify-otp", s.handleVerifyOTP)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/reset-password", s.handleResetPassword)

		r.Route("/booking/{businessID}", func(r chi.Router) {
			r.Get("/", s.handleBookingOpen)
			r.Post("/service", s.handleBookingService)
			r.Post("/staff", s.handleBookingStaff)
			r.Post("/date", s.handleBookingDate)
			r.Post("/time", s.handleBookingTime)
			r.Post("/notes", s.handleBookingNotes)
			r.Post("/step", s.handleBookingStep)
			r.Post("/confirm", s.handleBookingConfirm)
			r.Post("/reset", s.handleBookingReset)
		})

		guardCustomer := Guard[models.User](s.deps.Customers, s.cfg.GuardWait())
		r.Group(func(r chi.Router) {
			r.Use(guardCustomer)
			r.Get("/my-bookings", s.handleMyBookings)
			r.Post("/my-bookings/{id}/cancel", s.handleCancelBooking)
			r.Post("/my-bookings/{id}/reschedule", s.handleRescheduleBooking)
			r.Post("/my-bookings/{id}/rate", s.handleRateBooking)
			r.Get("/profile", s.handleProfile)
			r.Put("/profile", s.handleUpdateProfile)
			r.Post("/profile/password", s.handleChangePassword)
			r.Post("/logout", s.handleLogout)
		})

		r.Route("/partner", func(r chi.Router) {
			r.Post("/login", s.handlePartnerLogin)
			r.Post("/register", s.handlePartnerRegister)

			r.Group(func(r chi.Router) {
				r.Use(Guard[models.Partner](s.deps.Partners, s.cfg.GuardWait()))
				r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
					redirect(w, session.PartnerNamespace.HomePath, nil)
				})
				r.Get("/dashboard", s.handleDashboard)
				r.Get("/calendar", s.handleCalendar)

				r.Get("/bookings", s.handlePartnerBookings)
				r.Get("/bookings/export", s.handleExportBookings)
				r.Get("/bookings/{id}", s.handlePartnerBooking)
				r.Post("/bookings/{id}/status", s.handleChangeStatus)

				r.Get("/services", s.handleServices)
				r.Post("/services", s.handleSaveService)
				r.Put("/services/{id}", s.handleSaveService)
				r.Delete("/services/{id}", s.handleDeleteService)
				r.Post("/services/{id}/toggle", s.handleToggleService)

				r.Get("/staff", s.handleStaff)
				r.Post("/staff", s.handleSaveStaff)
				r.Put("/staff/{id}", s.handleSaveStaff)
				r.Delete("/staff/{id}", s.handleDeleteStaff)
				r.Get("/staff/{id}/schedule", s.handleSchedule)
				r.Post("/staff/{id}/schedule", s.handleSaveSchedule)

				r.Get("/customers", s.handleCustomers)
				r.Get("/customers/{id}", s.handleCustomer)

				r.Get("/settings", s.handleSettings)
				r.Put("/settings", s.handleUpdateSettings)
				r.Post("/logout", s.handlePartnerLogout)
			})
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			redirect(w, session.CustomerNamespace.HomePath, nil)
		})
	})

	return r
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
