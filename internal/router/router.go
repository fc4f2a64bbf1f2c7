// Package router assembles the gin engine: middleware, route groups and the
// operational endpoints.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/divvyhq/divvy/internal/auth"
	"github.com/divvyhq/divvy/internal/handlers"
	"github.com/divvyhq/divvy/internal/middleware"
	"github.com/divvyhq/divvy/internal/service"
	"github.com/divvyhq/divvy/internal/storage"
)

// Deps carries everything the router needs to wire the handlers.
type Deps struct {
	Store          storage.Store
	Authenticator  auth.Authenticator
	JWTManager     *auth.JWTManager
	AllowedOrigins []string
}

// New builds the engine with all routes registered.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	users := service.NewUserService(deps.Store)
	contacts := service.NewContactService(deps.Store)
	groups := service.NewGroupService(deps.Store)
	expenses := service.NewExpenseService(deps.Store)

	authHandler := handlers.NewAuthHandler(deps.Authenticator, deps.JWTManager, users)
	contactHandler := handlers.NewContactHandler(contacts, users)
	groupHandler := handlers.NewGroupHandler(groups)
	expenseHandler := handlers.NewExpenseHandler(expenses)

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", middleware.Auth(deps.JWTManager), authHandler.Me)
		}

		contactRoutes := api.Group("/contacts", middleware.Auth(deps.JWTManager))
		{
			contactRoutes.GET("", contactHandler.List)
			contactRoutes.GET("/friends", contactHandler.Friends)
			contactRoutes.GET("/friends/count", contactHandler.FriendCount)
			contactRoutes.GET("/pending-sent", contactHandler.PendingSent)
			contactRoutes.GET("/pending-received", contactHandler.PendingReceived)
			contactRoutes.GET("/blocked", contactHandler.Blocked)
			contactRoutes.GET("/search", contactHandler.Search)
			contactRoutes.POST("/add-user/:user_id", contactHandler.AddByUser)
			contactRoutes.POST("/add-email", contactHandler.AddByEmail)
			contactRoutes.POST("/:contact_id/accept", contactHandler.Accept)
			contactRoutes.POST("/:contact_id/decline", contactHandler.Decline)
			contactRoutes.POST("/:contact_id/block", contactHandler.Block)
			contactRoutes.POST("/:contact_id/unblock", contactHandler.Unblock)
			contactRoutes.PUT("/:contact_id/relationship", contactHandler.UpdateRelationship)
			contactRoutes.DELETE("/:contact_id", contactHandler.Remove)
		}

		groupRoutes := api.Group("/groups", middleware.Auth(deps.JWTManager))
		{
			groupRoutes.POST("", groupHandler.Create)
			groupRoutes.GET("", groupHandler.List)
			groupRoutes.GET("/search", groupHandler.Search)
			groupRoutes.GET("/:group_id", groupHandler.Get)
			groupRoutes.PUT("/:group_id", groupHandler.Update)
			groupRoutes.DELETE("/:group_id", groupHandler.Delete)
			groupRoutes.PUT("/:group_id/settings", groupHandler.UpdateSettings)
			groupRoutes.GET("/:group_id/members", groupHandler.Members)
			groupRoutes.POST("/:group_id/members", groupHandler.AddMember)
			groupRoutes.DELETE("/:group_id/members/:user_id", groupHandler.RemoveMember)
			groupRoutes.POST("/:group_id/archive", groupHandler.Archive)
			groupRoutes.POST("/:group_id/unarchive", groupHandler.Unarchive)
			groupRoutes.GET("/:group_id/stats", groupHandler.Stats)
			groupRoutes.GET("/:group_id/balances", groupHandler.Balances)
			groupRoutes.GET("/:group_id/expenses", expenseHandler.ListByGroup)
		}

		expenseRoutes := api.Group("/expenses", middleware.Auth(deps.JWTManager))
		{
			expenseRoutes.POST("", expenseHandler.Create)
			expenseRoutes.GET("/mine", expenseHandler.ListMine)
			expenseRoutes.GET("/owed-total", expenseHandler.TotalOwed)
			expenseRoutes.GET("/:expense_id", expenseHandler.Get)
			expenseRoutes.PUT("/:expense_id", expenseHandler.Update)
			expenseRoutes.DELETE("/:expense_id", expenseHandler.Delete)
		}
	}

	return r
}
