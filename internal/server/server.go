package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/auth"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/booking"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/classroom"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/config"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/email"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/schedule"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/session"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/user"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/wallet"
)

// Handlers bundles the per-domain HTTP handlers the router mounts.
type Handlers struct {
	User      *user.Handler
	Schedule  *schedule.Handler
	Session   *session.Handler
	Booking   *booking.Handler
	Wallet    *wallet.Handler
	Classroom *classroom.Handler
	Email     *email.Service
}

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, h Handlers) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	public := router.Group("/auth")
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
		public.POST("/refresh", h.User.RefreshToken)
	}

	router.GET("/instructors", h.User.ListInstructors)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.User.GetMe)
		protected.PATCH("/me", h.User.UpdateMe)
		protected.GET("/instructors/:instructorID/slots", h.Schedule.ListInstructorSlots)

		protected.POST("/bookings", h.Booking.Initiate)
		protected.POST("/bookings/confirm", h.Booking.Confirm)
		protected.POST("/bookings/:paymentID/cancel", h.Booking.Cancel)
		protected.GET("/bookings/:paymentID", h.Booking.Status)
		protected.GET("/bookings", h.Booking.List)

		protected.GET("/my/sessions", h.Session.ListMySessions)
		protected.GET("/sessions/:sessionID/classroom", h.Classroom.Join)
	}

	instructor := router.Group("/")
	instructor.Use(authMiddleware, auth.RequireRole(auth.RoleInstructor))
	{
		instructor.POST("/slots", h.Schedule.CreateSlot)
		instructor.GET("/slots", h.Schedule.ListMySlots)
		instructor.GET("/bookings/received", h.Booking.ListReceived)
		instructor.POST("/sessions/:sessionID/classroom/end", h.Classroom.End)

		instructor.GET("/wallet", h.Wallet.GetBalance)
		instructor.GET("/wallet/transactions", h.Wallet.ListTransactions)
		instructor.POST("/wallet/withdrawals", h.Wallet.RequestWithdrawal)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/instructors/:instructorID/verify", h.User.VerifyInstructor)
		admin.POST("/withdrawals/:transactionID/complete", h.Wallet.CompleteWithdrawal)
		admin.POST("/withdrawals/:transactionID/fail", h.Wallet.FailWithdrawal)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(h.Email))

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
