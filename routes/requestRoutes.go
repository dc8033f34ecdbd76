package routes

import (
	"nagarseva-be/controllers"
	"nagarseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// dailyRequestLimit caps request submissions per citizen per 24h
const dailyRequestLimit = 10

// RequestRoutes registers the mirrored waste and water request routes
func RequestRoutes(r *gin.Engine) {
	for _, d := range controllers.Domains() {
		auth := middlewares.RequireAuth()
		admin := middlewares.RequireAdmin()

		grp := r.Group("/api/" + string(d.Name))
		{
			grp.POST("", auth, middlewares.RequestRateLimiter(dailyRequestLimit), controllers.CreateRequest(d))
			grp.GET("", auth, admin, controllers.ListRequests(d))
			grp.GET("/mine", auth, controllers.ListMyRequests(d))
			grp.GET("/assigned", auth, controllers.ListAssignedRequests(d))
			grp.GET("/:id", auth, controllers.GetRequest(d))
			grp.PUT("/:id", auth, admin, controllers.UpdateRequest(d))
			grp.DELETE("/:id", auth, admin, controllers.DeleteRequest(d))
			grp.POST("/:id/schedule", auth, admin, controllers.ScheduleRequest(d))
			grp.POST("/:id/assign", auth, admin, controllers.AssignRequest(d))
			grp.POST("/:id/report", auth, controllers.ReportRequest(d))
			grp.POST("/:id/verify", auth, controllers.VerifyRequest(d))
		}
	}
}
