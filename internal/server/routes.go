// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/controller/application"
	"github.com/Nishanth-cyber/Job-search/internal/controller/file"
	"github.com/Nishanth-cyber/Job-search/internal/controller/jobpost"
	"github.com/Nishanth-cyber/Job-search/internal/middleware"
	"github.com/Nishanth-cyber/Job-search/internal/model"
)

// multipartOverhead is room for form fields and part headers next to the resume itself
const multipartOverhead = 1 << 20

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(s.log), middleware.SafeHeader())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	lAuth := auth.NewLocalAuthHandler(s.DB, s.tokens, s.cfg.CookieName, s.log)
	logout := auth.NewLogoutController(s.comp.Blacklist, s.cfg.CookieName, s.log)
	apps := application.NewApplicationController(s.pipeline, s.log)
	jobs := jobpost.NewJobPostController(s.DB, s.comp.SkillTest, s.log)
	files := file.NewFileController(s.DB, s.comp.Blobs, s.log)

	uploadLimit := middleware.SizeLimit(s.cfg.MaxUploadBytes + multipartOverhead)
	rateLimit := middleware.RateLimiterMiddleware(s.comp.RateStore)

	r.GET("/health", s.healthHandler)

	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth", rateLimit)
		{
			authRoute.POST("/register", lAuth.LocalRegisterHandler)
			authRoute.POST("/login", lAuth.LocalLoginHandler)
		}

		needAuth := v1.Group("")
		needAuth.Use(middleware.RequireAuth(s.resolver, s.cfg.CookieName), rateLimit)

		needAuth.POST("/auth/logout", logout.LogoutHandler)
		needAuth.GET("/file/:id", files.GetFile)

		jobPostRoute := needAuth.Group("/jobpost")
		{
			jobPostRoute.GET("", jobs.GetPosts)
			jobPostRoute.GET("/:id", jobs.GetPostByID)
			jobPostRoute.POST("", middleware.CheckRole(model.RoleRecruiter), jobs.CreateJobPostHandler)
			jobPostRoute.PATCH("/:id/deactivate", middleware.CheckRole(model.RoleRecruiter, model.RoleAdmin), jobs.DeactivateJobPost)
			jobPostRoute.GET("/:id/test-questions", jobs.TestQuestionsHandler)
			jobPostRoute.POST("/:id/evaluate-answers", middleware.CheckRole(model.RoleJobSeeker), jobs.EvaluateAnswersHandler)
			jobPostRoute.GET("/:id/applications", middleware.CheckRole(model.RoleRecruiter, model.RoleAdmin), apps.JobApplicationsHandler)
		}

		appRoute := needAuth.Group("/applications")
		{
			appRoute.GET("/:id", apps.GetApplicationHandler)
			appRoute.PATCH("/:id/status", middleware.CheckRole(model.RoleRecruiter), apps.UpdateStatusHandler)

			seeker := appRoute.Group("", middleware.CheckRole(model.RoleJobSeeker))
			seeker.POST("", uploadLimit, apps.SubmitHandler)
			seeker.POST("/preview", uploadLimit, apps.PreviewHandler)
			seeker.POST("/test", apps.SubmitTestHandler)
			seeker.GET("/me", apps.MyApplicationsHandler)
			seeker.DELETE("/:id", apps.WithdrawHandler)
		}

		profileRoute := needAuth.Group("/profile", middleware.CheckRole(model.RoleJobSeeker))
		{
			profileRoute.POST("/resume", uploadLimit, files.UploadResume)
		}
	}

	return r
}

func (s *MyServer) healthHandler(c *gin.Context) {
	stats := s.DB.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
