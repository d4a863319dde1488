package server

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nishmithavg/eventease/config"
	"github.com/nishmithavg/eventease/internal/handlers"
	"github.com/nishmithavg/eventease/internal/helpers"
	"github.com/nishmithavg/eventease/internal/middleware"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	r := NewRouter(db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func NewRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(recoveryHandler))
	r.Use(middleware.DatabaseMiddleware(db))

	r.NoRoute(func(c *gin.Context) {
		helpers.RespondWithError(c, http.StatusNotFound, "Route not found.")
	})

	r.GET("/", func(c *gin.Context) {
		helpers.Respond(c, http.StatusOK, "EventEase API Server", gin.H{"version": "1.0.0"})
	})

	setupRoutes(r)

	return r
}

// recoveryHandler keeps panics inside the response envelope. The panic
// value leaks into the message only outside release mode.
func recoveryHandler(c *gin.Context, recovered interface{}) {
	message := "Something went wrong."
	if gin.Mode() != gin.ReleaseMode {
		message = fmt.Sprintf("Something went wrong: %v", recovered)
	}
	helpers.RespondWithError(c, http.StatusInternalServerError, message)
	c.Abort()
}

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/auth/register", handlers.Register)
	api.POST("/auth/login", handlers.Login)

	auth := api.Group("/auth", middleware.RequireAuth())
	{
		auth.GET("/profile", handlers.GetProfile)
		auth.PUT("/profile", handlers.UpdateProfile)
		auth.PUT("/block/:id", middleware.AdminOnly(), handlers.ToggleBlockUser)
	}

	admin := api.Group("/admin", middleware.RequireAuth(), middleware.AdminOnly())
	{
		admin.GET("/users", handlers.ListUsers)
		admin.PUT("/events/:id", handlers.AdminUpdateEvent)
		admin.DELETE("/events/:id", handlers.AdminDeleteEvent)
	}

	events := api.Group("/events")
	{
		events.GET("", middleware.OptionalAuth(), handlers.ListEvents)
		events.GET("/:id", middleware.OptionalAuth(), handlers.GetEvent)
		events.POST("", middleware.RequireAuth(), middleware.OrganizerOnly(), handlers.CreateEvent)
		events.PUT("/:id", middleware.RequireAuth(), middleware.OrganizerOnly(), handlers.UpdateEvent)
		events.DELETE("/:id", middleware.RequireAuth(), middleware.OrganizerOnly(), handlers.DeleteEvent)
		events.PUT("/approve/:id", middleware.RequireAuth(), middleware.AdminOnly(), handlers.ApproveEvent)
		events.PUT("/:id/block", middleware.RequireAuth(), middleware.OrganizerOnly(), handlers.BlockUserFromEvent)
		events.PUT("/:id/unblock", middleware.RequireAuth(), middleware.OrganizerOnly(), handlers.UnblockUserFromEvent)
	}

	api.GET("/my-events", middleware.RequireAuth(), middleware.OrganizerOnly(), handlers.MyEvents)

	registrations := api.Group("/registrations")
	{
		registrations.GET("/count/:eventId", handlers.RegistrationCount)
		registrations.POST("/:eventId", middleware.RequireAuth(), handlers.RegisterForEvent)
		registrations.GET("/my", middleware.RequireAuth(), handlers.MyRegistrations)
		registrations.DELETE("/:id", middleware.RequireAuth(), handlers.CancelRegistration)
		registrations.GET("", middleware.RequireAuth(), middleware.AdminOnly(), handlers.ListRegistrations)
		registrations.GET("/event/:eventId", middleware.RequireAuth(), handlers.EventRegistrations)
	}
}
