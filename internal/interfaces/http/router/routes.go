package router

import (
	"github.com/gin-gonic/gin"

	"storybook-builder-api/internal/interfaces/http/middleware"
)

// RegisterV1Routes 注册 studio v1 路由
func RegisterV1Routes(v1 *gin.RouterGroup, h StudioHandlers) {
	// 无状态回复解析
	v1.POST("/interpret", h.Chat.Interpret)

	v1.POST("/sessions", h.Session.CreateSession)

	sessions := v1.Group("/sessions/:"+middleware.SessionParam, middleware.SessionContext())
	{
		sessions.GET("", h.Session.GetSession)
		sessions.DELETE("", h.Session.DeleteSession)

		// 对话
		sessions.GET("/turns", h.Chat.ListTurns)
		sessions.POST("/messages", h.Chat.SendMessage)
		sessions.POST("/turns/:idx/interpret", h.Chat.InterpretTurn)

		// 预览
		sessions.PUT("/preview", h.Preview.UpdatePreview)
		sessions.DELETE("/preview", h.Preview.ClearPreview)
		sessions.POST("/preview/grammar", h.Preview.CorrectGrammar)
		sessions.POST("/preview/style", h.Preview.ChangeStyle)
		sessions.POST("/preview/image", h.Preview.GenerateImage)

		// 页面
		sessions.GET("/pages", h.Page.ListPages)
		sessions.POST("/pages", h.Page.SavePage)
		sessions.DELETE("/pages/:pid", h.Page.RemovePage)
		sessions.POST("/pages/drag", h.Page.BeginDrag)
		sessions.DELETE("/pages/drag", h.Page.EndDrag)
		sessions.POST("/pages/drop", h.Page.DropPage)
		sessions.POST("/pages/move", h.Page.MovePage)
		sessions.PUT("/pages/order", h.Page.ReorderPages)

		// 导出
		sessions.GET("/export", h.Export.Export)
	}
}

// RegisterGatewayRoutes 注册 gateway 路由
func RegisterGatewayRoutes(r gin.IRoutes, h GatewayHandlers) {
	r.POST("/chat", h.Gateway.Chat)
	r.POST("/generate-image", h.Gateway.GenerateImage)
}
