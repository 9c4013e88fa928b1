package transcripts

import (
	"github.com/gin-gonic/gin"
	"github.com/voxnote/transcript-api/api/types"
)

// RegisterRoutes registers transcript routes. optionalAuth applies to the
// save endpoint only; everything else requires a session.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, requireAuth, optionalAuth gin.HandlerFunc) {
	router.POST("", optionalAuth, Save(deps))

	authed := router.Group("")
	authed.Use(requireAuth)
	{
		authed.GET("", List(deps))
		authed.GET("/:id", Get(deps))
		authed.PUT("/:id", Update(deps))
		authed.DELETE("/:id", SoftDelete(deps))
		authed.POST("/:id/restore", Restore(deps))
		authed.DELETE("/:id/permanent", PermanentDelete(deps))
	}
}
