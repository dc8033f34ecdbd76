package routes

import (
	"nagarseva-be/controllers"
	"nagarseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// ActivityRoutes sets up the audit trail listing
func ActivityRoutes(r *gin.Engine) {
	activity := r.Group("/api/activity")
	{
		activity.GET("", middlewares.RequireAuth(), middlewares.RequireAdmin(), controllers.ListActivity)
	}
}
