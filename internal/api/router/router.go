package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/fieldservice-be/internal/api/handler"
	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	serviceName := deps.ServiceName
	if serviceName == "" {
		serviceName = "fieldservice-api"
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})

	jobHandler := handler.NewJobHandler(deps)
	scanHandler := handler.NewScanHandler(deps)
	techHandler := handler.NewTechnicianHandler(deps)
	reportHandler := handler.NewReportHandler(deps)
	googleHandler := handler.NewGoogleHandler(deps)
	userHandler := handler.NewUserHandler(deps)
	vendorHandler := handler.NewVendorHandler(deps)
	notificationHandler := handler.NewNotificationHandler(deps)

	authed := AuthMiddleware(deps.Auth, deps.Logger)
	scanAuth := ScanAuthMiddleware(deps.CronSecret, deps.Auth, deps.Logger)

	// Scans: cron secret or manager-role session
	r.GET("/contract-notifications", scanAuth, scanHandler.ScanContracts)
	r.POST("/contract-notifications", scanAuth, scanHandler.ScanContracts)
	r.GET("/contracts/scan", scanAuth, scanHandler.ScanContracts)
	r.GET("/jobs/check-overdue", scanAuth, scanHandler.CheckOverdue)

	jobs := r.Group("/jobs", authed)
	{
		jobs.GET("", jobHandler.ListJobs)
		jobs.POST("", jobHandler.CreateJob)
		jobs.GET("/:id", jobHandler.GetJob)
		jobs.DELETE("/:id/delete", jobHandler.DeleteJob)
	}

	technician := r.Group("/technician", authed, RequireRoles(domain.RoleTechnician))
	{
		technician.POST("/accept-job", techHandler.AcceptJob)
		technician.POST("/decline-job", techHandler.DeclineJob)
		technician.GET("/jobs", techHandler.ListJobs)
	}

	reports := r.Group("/reports/:id", authed)
	{
		reports.GET("/view", reportHandler.View)
		reports.GET("/view-pdf", reportHandler.ViewPDF)
		reports.GET("/download", reportHandler.Download)
	}

	// OAuth redirects carry no session token
	r.GET("/google/auth/initiate", googleHandler.Initiate)
	r.GET("/google/auth/callback", googleHandler.Callback)
	r.POST("/google/token", authed, googleHandler.SaveToken)

	r.GET("/user/current", authed, userHandler.Current)
	r.POST("/auth/logout", authed, userHandler.Logout)

	vendors := r.Group("/vendors", authed)
	{
		vendors.GET("", vendorHandler.ListVendors)
		vendors.POST("", RequireRoles(domain.JobEditorRoles...), vendorHandler.CreateVendor)
	}

	notifications := r.Group("/notifications", authed)
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
	}

	return r
}
