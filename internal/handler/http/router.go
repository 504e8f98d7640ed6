package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/jwt"
)

type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

type Handlers struct {
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Notification NotificationHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-leave"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/notifications", func(r chi.Router) {
			// SSE authenticates with a query token
			r.Get("/stream", h.Notification.Stream)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Get("/stream/token", h.Notification.GetSSEToken)
				r.Patch("/read-all", h.Notification.MarkAllAsRead)
				r.Patch("/{id}/read", h.Notification.MarkAsRead)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/my", h.Attendance.GetMyAttendance)
				r.Get("/my/today", h.Attendance.Today)
				r.Get("/my/summary", h.Attendance.GetMySummary)

				// HR and admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireReviewer)
					r.Get("/employees/{employeeID}", h.Attendance.GetEmployeeAttendance)
					r.Get("/export", h.Attendance.Export)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.Post("/", h.Leave.Submit)
					r.Get("/my", h.Leave.GetMyRequests)
					r.Get("/{id}", h.Leave.GetRequest)

					// HR and admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireReviewer)
						r.Get("/", h.Leave.ListRequests)
						r.Post("/{id}/review", h.Leave.Review)
					})
				})

				r.Route("/balances", func(r chi.Router) {
					r.Get("/my", h.Leave.GetMyBalances)

					// HR and admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireReviewer)
						r.Get("/{employeeID}", h.Leave.GetEmployeeBalances)
						r.Get("/{employeeID}/history", h.Leave.History)
						r.Post("/{employeeID}/credit", h.Leave.Credit)
						r.Post("/{employeeID}/debit", h.Leave.Debit)
						r.Post("/{employeeID}/provision", h.Leave.Provision)
					})
				})
			})
		})
	})
	return r
}
