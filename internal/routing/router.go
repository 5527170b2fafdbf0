// Package routing builds the gin engine: common middleware, the public
// surface and the authenticated surface.
package routing

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"blogserver/internal/handlers"
	"blogserver/internal/managers"
	"blogserver/internal/metrics"
	"blogserver/internal/middleware"
	"blogserver/internal/schemas"
	"blogserver/internal/utils"
	"blogserver/internal/worker"
)

// NewRouter wires the handlers to their routes. Everything behind the auth
// group requires a bearer token bound to a live session.
func NewRouter(databaseManager managers.DatabaseMgr, jwtManager managers.JWTMgr, mailManager managers.MailMgr, workerPool *worker.Pool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(middleware.LogRequest())
	router.Use(middleware.SanitizePath())
	router.Use(middleware.CollectMetrics())
	router.Use(cors.Default())

	userHandler := handlers.NewUserHandler(databaseManager, jwtManager, mailManager)
	entryHandler := handlers.NewEntryHandler(databaseManager, mailManager, workerPool)
	savedPostHandler := handlers.NewSavedPostHandler(databaseManager)

	router.GET("/health", func(c *gin.Context) {
		if err := databaseManager.GetPool().Ping(c); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusServiceUnavailable, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/", entryHandler.GetHomeFeed)
	router.POST("/", middleware.ValidateAndSanitizeStruct(schemas.SubscribeRequest{}), userHandler.SubscribeNewsletter)
	router.GET("/entries", entryHandler.ListEntries)

	router.POST("/registration/", middleware.ValidateAndSanitizeStruct(schemas.RegistrationRequest{}), userHandler.RegisterUser)
	router.POST("/registration/resend", middleware.ValidateAndSanitizeStruct(schemas.ResendActivationRequest{}), userHandler.ResendActivation)
	router.POST("/login/", middleware.ValidateAndSanitizeStruct(schemas.LoginRequest{}), userHandler.LoginUser)
	router.GET("/activate/:uid/:token/", userHandler.ActivateUser)

	authenticated := router.Group("", middleware.RequireAuth(jwtManager, databaseManager))
	authenticated.POST("/logout/", userHandler.LogoutUser)

	authenticated.GET("/entries/:entryId", entryHandler.GetEntryDetail)
	authenticated.POST("/entries/:entryId", middleware.ValidateAndSanitizeStruct(schemas.CreateCommentRequest{}), entryHandler.CreateComment)
	authenticated.POST("/entries/create", middleware.ValidateAndSanitizeStruct(schemas.CreateEntryRequest{}), entryHandler.CreateEntry)
	authenticated.POST("/entries/:entryId/edit", middleware.ValidateAndSanitizeStruct(schemas.CreateEntryRequest{}), entryHandler.EditEntry)
	authenticated.POST("/entries/:entryId/delete", entryHandler.DeleteEntry)
	authenticated.POST("/entries/:entryId/toggle_save/", savedPostHandler.ToggleSave)

	authenticated.GET("/profile/", userHandler.GetOwnProfile)
	authenticated.GET("/profile/:username/", userHandler.GetProfile)
	authenticated.POST("/profile/user/update/", userHandler.UpdateProfile)

	return router
}
