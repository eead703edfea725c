package main

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/handler"
	internalmiddleware "github.com/noah-isme/unischedule-api/internal/middleware"
	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/pkg/config"
	"github.com/noah-isme/unischedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/unischedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/unischedule-api/pkg/middleware/requestid"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

type requestObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

type routeDeps struct {
	auth      *handler.AuthHandler
	timetable *handler.TimetableHandler
	metrics   *handler.MetricsHandler
	authSvc   tokenValidator
	observer  requestObserver
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.observer))

	r.GET("/health", deps.metrics.Health)
	r.GET("/ready", deps.metrics.Ready)
	r.GET("/metrics", deps.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", deps.auth.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(deps.authSvc), internalmiddleware.RequireScopeClaims())

	secured.GET("/auth/me", deps.auth.Me)

	planners := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleViceDean, models.RoleDepartmentHead)
	secured.POST("/schedule/generate", planners, deps.timetable.Generate)
	secured.GET("/conflicts", planners, deps.timetable.ListConflicts)
	secured.POST("/department/validate", internalmiddleware.RequireRoles(models.RoleDepartmentHead), deps.timetable.ValidateDepartment)

	secured.GET("/exams", deps.timetable.ListExams)
	secured.GET("/schedule/export", deps.timetable.Export)

	return r
}
