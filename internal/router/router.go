package router

import (
	"github.com/gin-gonic/gin"
	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/controller"
	"github.com/testimonialhq/testimonials-backend/internal/middleware"
)

type Router struct {
	authController        *controller.AuthController
	testimonialController *controller.TestimonialController
	moderationController  *controller.ModerationController
	categoryController    *controller.CategoryController
	mediaController       *controller.MediaController
	dashboardController   *controller.DashboardController
	eventController       *controller.EventController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	testimonialController *controller.TestimonialController,
	moderationController *controller.ModerationController,
	categoryController *controller.CategoryController,
	mediaController *controller.MediaController,
	dashboardController *controller.DashboardController,
	eventController *controller.EventController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		testimonialController: testimonialController,
		moderationController:  moderationController,
		categoryController:    categoryController,
		mediaController:       mediaController,
		dashboardController:   dashboardController,
		eventController:       eventController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Testimonials API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		testimonials := v1.Group("/testimonials")
		testimonials.Use(r.authMiddleware.OptionalAuthenticate())
		{
			testimonials.GET("", r.testimonialController.List)
			testimonials.GET("/featured", r.testimonialController.Featured)
			testimonials.GET("/stats", r.testimonialController.Stats)
			testimonials.GET("/slug/:slug", r.testimonialController.GetBySlug)
			testimonials.GET("/:id", r.testimonialController.Get)
			testimonials.GET("/:id/media", r.mediaController.ListByTestimonial)

			// Guests may submit; authenticated submissions are linked to
			// their account.
			testimonials.POST("", r.testimonialController.Create)
		}

		// Mutations require a logged-in user; ownership is enforced in
		// the service layer.
		authed := v1.Group("/testimonials")
		authed.Use(r.authMiddleware.Authenticate())
		{
			authed.PUT("/:id", r.testimonialController.Update)
			authed.DELETE("/:id", r.testimonialController.Delete)
			authed.POST("/:id/media/presign", r.mediaController.PresignUpload)
			authed.POST("/:id/media", r.mediaController.Attach)
		}

		media := v1.Group("/media")
		media.Use(r.authMiddleware.Authenticate())
		{
			media.PUT("/:id", r.mediaController.Update)
			media.DELETE("/:id", r.mediaController.Delete)
		}

		categories := v1.Group("/categories")
		categories.Use(r.authMiddleware.OptionalAuthenticate())
		{
			categories.GET("", r.categoryController.List)
			categories.GET("/counts", r.categoryController.ListWithCounts)
			categories.GET("/slug/:slug", r.categoryController.GetBySlug)
			categories.GET("/:id", r.categoryController.Get)
		}

		moderation := v1.Group("/moderation")
		moderation.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireModerator())
		{
			moderation.GET("/testimonials/pending", r.moderationController.Pending)
			moderation.POST("/testimonials/:id/approve", r.moderationController.Approve)
			moderation.POST("/testimonials/:id/reject", r.moderationController.Reject)
			moderation.POST("/testimonials/:id/feature", r.moderationController.Feature)
			moderation.POST("/testimonials/:id/archive", r.moderationController.Archive)
			moderation.POST("/testimonials/:id/respond", r.moderationController.Respond)
			moderation.GET("/testimonials/:id/history", r.testimonialController.AuditTrail)
			moderation.POST("/testimonials/bulk-approve", r.moderationController.BulkApprove)
			moderation.POST("/testimonials/bulk-reject", r.moderationController.BulkReject)
			moderation.POST("/testimonials/bulk-archive", r.moderationController.BulkArchive)

			moderation.POST("/categories", r.categoryController.Create)
			moderation.PUT("/categories/:id", r.categoryController.Update)
			moderation.DELETE("/categories/:id", r.categoryController.Delete)

			moderation.GET("/media/stats", r.mediaController.Stats)

			moderation.GET("/dashboard", r.dashboardController.Overview)
			moderation.GET("/dashboard/charts", r.dashboardController.Charts)
			moderation.GET("/export", r.dashboardController.Export)

			moderation.GET("/events", r.eventController.Feed)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

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
