package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(router *gin.Engine, documents *DocumentHandler, stream *EventsHandler) {
	v1 := router.Group("/v1")

	docs := v1.Group("/documents")
	{
		docs.POST("", documents.CreateDocument)
		docs.GET("/:id", documents.GetDocument)
		docs.PATCH("/:id", documents.UpdateHeader)
		docs.DELETE("/:id", documents.DeleteDocument)

		docs.PUT("/:id/contact", documents.SaveContact)
		docs.PUT("/:id/profile", documents.SaveProfile)
		docs.PUT("/:id/skills", documents.SaveSkills)
		docs.PUT("/:id/experience", documents.SaveExperience)
		docs.PUT("/:id/projects", documents.SaveProjects)
		docs.PUT("/:id/education", documents.SaveEducation)
		docs.PUT("/:id/languages", documents.SaveLanguages)

		if stream != nil {
			docs.GET("/:id/events", stream.HandleConnection)
		}
	}
}
