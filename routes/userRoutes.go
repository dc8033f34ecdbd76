package routes

import (
	"nagarseva-be/controllers"
	"nagarseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// UserRoutes sets up admin-managed user routes (worker provisioning)
func UserRoutes(r *gin.Engine) {
	users := r.Group("/api/users", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		users.POST("", controllers.CreateUser)
		users.GET("/workers", controllers.ListWorkers)
	}
}
