package api

import (
	"alcyxob/runlog/internal/observability"
	"alcyxob/runlog/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	fitbitSuccessRedirect string,
	authService service.AuthService,
	workoutService service.WorkoutService,
	fitbitService service.FitbitService,
	logger logrus.FieldLogger,
) {
	authHandler := NewAuthHandler(authService, logger)
	workoutHandler := NewWorkoutHandler(workoutService, logger)
	fitbitHandler := NewFitbitHandler(fitbitService, fitbitSuccessRedirect, logger)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		abortWithError(c, http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Not found")
	})

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", observability.Handler())

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Fitbit redirects the browser here, so no bearer token.
		apiV1.GET("/fitbit/callback", fitbitHandler.Callback)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Workout Routes ---
		// :userId is "me" or the session user's own id
		workoutGroup := protected.Group("/users/:userId/workouts")
		{
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.DELETE("", workoutHandler.DeleteWorkouts)
			workoutGroup.GET("/summary", workoutHandler.SummarizeWorkouts)
			workoutGroup.GET("/exports", workoutHandler.ListExports)
			workoutGroup.POST("/exports", workoutHandler.ExportWorkouts)
			workoutGroup.DELETE("/exports/:exportId", workoutHandler.DeleteExport)
			workoutGroup.DELETE("/:workoutId", workoutHandler.DeleteWorkout)
		}

		// --- Fitbit Routes ---
		fitbitGroup := protected.Group("/fitbit")
		{
			fitbitGroup.GET("/signin", fitbitHandler.SignIn)
			fitbitGroup.GET("/auth", fitbitHandler.Status)
			fitbitGroup.DELETE("/auth", fitbitHandler.SignOut)
			fitbitGroup.GET("/signout", fitbitHandler.SignOut)
			fitbitGroup.GET("/token", fitbitHandler.Token)
			fitbitGroup.GET("/activities", fitbitHandler.ListActivities)
		}
	}
}
