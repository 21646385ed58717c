// Package router 提供 HTTP 路由配置
package router

import (
	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/interfaces/http/handler"
	"scholar-sync-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	documentHandler *handler.DocumentHandler,
	groupHandler *handler.GroupHandler,
	searchHandler *handler.SearchHandler,
	notificationHandler *handler.NotificationHandler,
	profileHandler *handler.ProfileHandler,
	searchRateLimit gin.HandlerFunc,
) {
	// 当前用户档案
	v1.GET("/me", profileHandler.Me)

	// 文档（各组当前生效版本）
	documents := v1.Group("/documents")
	{
		documents.GET("/visible", documentHandler.ListVisible)
		documents.GET("/:did", documentHandler.Get)
		documents.GET("/:did/download-url", documentHandler.DownloadURL)
	}

	// 文档组与版本上传
	groups := v1.Group("/groups")
	{
		groups.GET("/mine", groupHandler.ListMine)
		groups.GET("/:gid", groupHandler.Get)
		groups.POST("",
			middleware.RequirePermission(middleware.PermDocumentUpload),
			groupHandler.Create)
		groups.POST("/:gid/versions",
			middleware.RequireRole(entity.UserRoleAdmin, entity.UserRoleFaculty),
			groupHandler.AddVersion)
	}

	// 检索
	search := v1.Group("/search")
	{
		if searchRateLimit != nil {
			search.Use(searchRateLimit)
		}
		search.POST("", searchHandler.Search)
	}

	// 站内通知
	notifications := v1.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:nid/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
	}
}
