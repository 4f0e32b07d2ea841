package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wallsetting-api/internal/middleware"
	"github.com/noah-isme/wallsetting-api/internal/models"
)

// Routes groups the handlers mounted under the API prefix.
type Routes struct {
	Auth          *AuthHandler
	Brands        *BrandInfoHandler
	ProfileImages *ProfileImageHandler
	Schedules     *ScheduleHandler
	Summary       *ScheduleSummaryHandler
	Tokens        middleware.TokenValidator
}

// Register mounts public reads and admin-only writes on api.
func (r Routes) Register(api gin.IRouter) {
	authenticated := middleware.JWT(r.Tokens)
	adminOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	auth := api.Group("/auth")
	auth.POST("/login", r.Auth.Login)
	auth.GET("/me", authenticated, r.Auth.Me)

	brands := api.Group("/brands_info")
	brands.GET("", r.Brands.List)
	brands.GET("/:id", r.Brands.Get)
	brands.GET("/:id/profile-image", r.ProfileImages.Download)
	brandWrites := brands.Group("", authenticated, adminOnly)
	brandWrites.POST("", r.Brands.Create)
	brandWrites.PUT("/:id", r.Brands.Update)
	brandWrites.DELETE("/:id", r.Brands.Delete)
	brandWrites.POST("/:id/profile-image", r.ProfileImages.Upload)

	schedules := api.Group("/schedules")
	schedules.GET("", r.Schedules.List)
	schedules.GET("/:id", r.Schedules.Get)
	scheduleWrites := schedules.Group("", authenticated, adminOnly)
	scheduleWrites.POST("", r.Schedules.Create)
	scheduleWrites.PUT("/:id", r.Schedules.Update)
	scheduleWrites.DELETE("/:id", r.Schedules.Delete)

	api.GET("/schedule-summary", r.Summary.Summary)
	api.GET("/schedule-summary/export", authenticated, adminOnly, r.Summary.Export)
}
