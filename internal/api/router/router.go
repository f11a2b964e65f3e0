package router

import (
	"context"
	"time"

	"resume-ingest-go/internal/api/handler"
	"resume-ingest-go/internal/logger"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
)

// RequestIDMiddleware 为每个请求生成请求ID，并注入携带该ID的日志记录器
// 响应头回传X-Request-ID方便排查
func RequestIDMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		requestID := string(ctx.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		reqLogger := logger.Logger.With().
			Str("request_id", requestID).
			Str("method", string(ctx.Method())).
			Str("path", string(ctx.Path())).
			Logger()
		c = reqLogger.WithContext(c)

		ctx.Header("X-Request-ID", requestID)
		start := time.Now()
		ctx.Next(c)

		reqLogger.Info().
			Int("status", ctx.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("请求处理完成")
	}
}

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, ingestHandler *handler.IngestHandler) {
	h.Use(RequestIDMiddleware())

	api := h.Group("/api/v1")

	api.POST("/resume/ingest", ingestHandler.HandleIngest)
	api.GET("/resume/search", ingestHandler.HandleSearchResumes)
	api.GET("/resume/:id", ingestHandler.HandleGetResume)

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
