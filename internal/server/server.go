package server

import (
	"context"
	"net/http"

	_ "classflow/docs"
	"classflow/internal/auth"
	"classflow/internal/booking"
	"classflow/internal/classes"
	"classflow/internal/config"
	"classflow/internal/member"
	"classflow/internal/notify"
	"classflow/internal/subscription"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	http   *http.Server
}

type Handlers struct {
	Member       *member.Handler
	Classes      *classes.Handler
	Subscription *subscription.Handler
	Booking      *booking.Handler
}

func New(db *sqlx.DB, cfg *config.Config, h Handlers, notifier *notify.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	public := router.Group("/auth")
	{
		public.POST("/register", h.Member.Register)
		public.POST("/login", h.Member.Login)
		public.POST("/refresh", h.Member.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.Member.GetMe)

		protected.GET("/classes", h.Classes.ListClasses)
		protected.GET("/classes/:classID", h.Classes.GetClass)
		protected.POST("/classes/:classID/book", h.Booking.Book)
		protected.DELETE("/classes/:classID/waitlist", h.Booking.LeaveWaitlist)
		protected.GET("/classes/:classID/waitlist/position", h.Booking.WaitlistPosition)

		protected.GET("/bookings", h.Booking.ListMyBookings)
		protected.POST("/bookings/:bookingID/cancel", h.Booking.Cancel)

		protected.GET("/subscriptions", h.Subscription.ListMy)
		protected.GET("/plans", h.Subscription.ListPlans)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/classes", h.Classes.CreateClass)
		admin.GET("/classes", h.Classes.ListClasses)
		admin.POST("/classes/:classID/cancel", h.Classes.CancelClass)
		admin.GET("/classes/:classID/roster", h.Booking.ClassRoster)
		admin.GET("/classes/:classID/waitlist", h.Booking.ClassWaitlist)

		admin.POST("/members/:memberID/subscriptions", h.Subscription.Create)
		admin.POST("/subscriptions/:subscriptionID/deactivate", h.Subscription.Deactivate)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-notification", TestNotification(notifier))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

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
