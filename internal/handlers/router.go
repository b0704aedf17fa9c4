package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/report-tracker-api/internal/config"
	"github.com/yukikurage/report-tracker-api/internal/constants"
	"github.com/yukikurage/report-tracker-api/internal/logging"
	"github.com/yukikurage/report-tracker-api/internal/metrics"
	"github.com/yukikurage/report-tracker-api/internal/middleware"
	"github.com/yukikurage/report-tracker-api/internal/services"
	"github.com/yukikurage/report-tracker-api/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Services bundles everything the router dispatches to.
type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Reports   *services.ReportService
	Issues    *services.IssueService
	Dashboard *services.DashboardService
	Documents *services.DocumentService
}

// NewSessionStore uses Redis when REDIS_HOST is configured and a signed cookie
// otherwise.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisEnabled() {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// NewRouter wires middleware and every route under /api.
func NewRouter(cfg *config.Config, log *zap.Logger, store sessions.Store, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(telemetry.ServiceName))
	r.Use(logging.Middleware(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.MaxMultipartMemory = constants.MaxMultipartMemory

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())
	if cfg.UploadBackend == "local" {
		r.Static("/uploads", cfg.UploadDir)
	}

	authHandler := NewAuthHandler(svc.Auth, log)
	userHandler := NewUserHandler(svc.Users, log)
	reportHandler := NewReportHandler(svc.Reports, log)
	issueHandler := NewIssueHandler(svc.Issues, log)
	dashboardHandler := NewDashboardHandler(svc.Dashboard, log)
	documentHandler := NewDocumentHandler(svc.Documents, log)

	requireAuth := middleware.RequireAuth(svc.Auth, log)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		users := api.Group("/users")
		users.Use(requireAuth, middleware.RequireAdmin())
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		reports := api.Group("/reports")
		reports.Use(requireAuth)
		{
			reports.GET("", reportHandler.ListReports)
			reports.POST("", reportHandler.CreateReport)
			reports.GET("/:id", reportHandler.GetReport)
			reports.PUT("/:id", reportHandler.UpdateReport)
			reports.DELETE("/:id", reportHandler.DeleteReport)
			reports.POST("/:id/complete", reportHandler.CompleteReport)
			reports.POST("/:id/approve", reportHandler.ApproveReport)
			reports.POST("/:id/suggest-issues", reportHandler.SuggestIssues)
		}

		issues := api.Group("/issues")
		issues.Use(requireAuth)
		{
			issues.GET("", issueHandler.ListIssues)
			issues.POST("", issueHandler.CreateIssue)
			issues.GET("/:id", issueHandler.GetIssue)
			issues.PUT("/:id", issueHandler.UpdateIssue)
			issues.PATCH("/:id/status", issueHandler.UpdateIssueStatus)
			issues.DELETE("/:id", issueHandler.DeleteIssue)
		}

		api.GET("/dashboard", requireAuth, dashboardHandler.GetDashboard)

		checklists := api.Group("/checklists")
		checklists.Use(requireAuth)
		{
			checklists.GET("", documentHandler.ListChecklists)
			checklists.POST("", documentHandler.UploadChecklist)
			checklists.DELETE("/:id", documentHandler.DeleteChecklist)
		}

		materials := api.Group("/materials-utility")
		materials.Use(requireAuth)
		{
			materials.GET("", documentHandler.ListMaterials)
			materials.POST("", documentHandler.UploadMaterial)
			materials.DELETE("/:id", documentHandler.DeleteMaterial)
		}
	}

	return r
}
