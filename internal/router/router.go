package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/workoutlog/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("workoutlog_session", store))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/signup", api.Signup)
	r.POST("/login", api.Login)
	r.POST("/logout", api.Logout)

	// 需要认证的 API 路由
	authed := r.Group("/api")
	authed.Use(handler.AuthRequired())
	{
		authed.GET("/me", api.Me)

		authed.GET("/workouts", api.ListWorkouts)
		authed.POST("/workouts", api.CreateWorkout)
		authed.GET("/workouts/:id", api.GetWorkout)
		authed.PUT("/workouts/:id", api.UpdateWorkout)
		authed.DELETE("/workouts/:id", api.DeleteWorkout)

		authed.GET("/stats", api.GetStatsByExercise)
		authed.GET("/stats/totals", api.GetTotals)
		authed.GET("/stats/aggregates", api.GetAggregates)
		authed.GET("/stats/monthly", api.GetMonthlyStats)
		authed.GET("/stats/exercise/:name", api.GetExerciseProgression)
	}

	return r
}
