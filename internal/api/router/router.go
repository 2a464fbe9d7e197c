package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/config"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/api/handler"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/api/middleware"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/jwt"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(8 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/register", middleware.RateLimit(rdb, 5, time.Minute), h.Auth.Register)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			adminOnly := middleware.RoleAuth(model.RoleAdmin)

			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", adminOnly, h.User.List)
				users.PUT("/:id/role", adminOnly, h.User.UpdateRole)
			}
			authorized.GET("/activities", adminOnly, h.User.ListActivities)

			// 院系模块
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.List)
				departments.GET("/:id", h.Department.Get)
				departments.POST("", adminOnly, h.Department.Create)
			}

			// 监考人员模块
			invigilators := authorized.Group("/invigilators")
			{
				invigilators.GET("", h.Invigilator.List)
				invigilators.GET("/:id", h.Invigilator.Get)
				invigilators.POST("", adminOnly, h.Invigilator.Create)
				invigilators.POST("/merge", adminOnly, h.Invigilator.Merge)
			}

			// 配额模块
			quota := authorized.Group("/quota")
			{
				quota.GET("/preview", adminOnly, h.Quota.Preview)
				quota.POST("/recompute", adminOnly, h.Quota.Recompute)
				quota.GET("/history", adminOnly, h.Quota.History)
			}

			// 监考场次模块
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("/available", h.Schedule.Available)
				schedules.GET("/my", h.Schedule.My)
				schedules.GET("", adminOnly, h.Schedule.List)
				schedules.GET("/:id", h.Schedule.Get)
				schedules.POST("", adminOnly, h.Schedule.Create)
				schedules.POST("/:id/claim", h.Schedule.Claim)
				schedules.PUT("/:id/assign", adminOnly, h.Schedule.Assign)
				schedules.DELETE("/:id/assign", adminOnly, h.Schedule.Unassign)
				schedules.POST("/bulk-assign", adminOnly, h.Schedule.BulkAssign)
				schedules.DELETE("/:id", adminOnly, h.Schedule.Delete)
			}

			// 申诉模块
			appeals := authorized.Group("/appeals")
			{
				appeals.POST("", h.Appeal.Create)
				appeals.GET("/my", h.Appeal.My)
				appeals.GET("", adminOnly, h.Appeal.List)
				appeals.GET("/:id", adminOnly, h.Appeal.Get)
				appeals.PUT("/:id/decide", adminOnly, h.Appeal.Decide)
				appeals.PUT("/:id/read", h.Appeal.MarkRead)
			}

			// 导入模块
			authorized.POST("/import/staff", adminOnly, h.Import.ImportStaffRoster)

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/schedules", adminOnly, h.Export.SchedulesXLSX)
				export.GET("/my-schedule.ics", h.Export.MyScheduleICS)
			}
		}
	}

	return r
}
