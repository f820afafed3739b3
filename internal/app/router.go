package app

import (
	"quiz_edu_backend/docs"
	"quiz_edu_backend/internal/config"
	"quiz_edu_backend/internal/middleware"
	"quiz_edu_backend/internal/model"
	"quiz_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 课程目录
		authGroup.GET("/courses", c.course.ListCourses)
		authGroup.GET("/courses/:courseId/map", c.course.GetCourseMap)
		authGroup.POST("/courses/select", c.course.SelectCourse)

		// 答题
		authGroup.GET("/levels/:levelId/questions", c.question.ListLevelQuestions)
		authGroup.GET("/levels/:levelId/result", c.question.GetLevelResult)
		authGroup.GET("/questions/:questionId", c.question.GetQuestion)
		authGroup.POST("/questions/:questionId/answer", c.question.SubmitAnswer)

		// 进度
		authGroup.GET("/progress/courses/:courseId", c.progress.GetCourseProgress)
		authGroup.GET("/progress/levels/:levelId", c.progress.GetLevelProgress)
	}

	// 管理员接口
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.POST("/progress/reset", c.progress.ResetProgress)
		adminGroup.POST("/progress/complete", c.progress.CompleteLevel)
	}
}
