package trash

import (
	"github.com/gin-gonic/gin"
	"github.com/voxnote/transcript-api/api/types"
)

// RegisterRoutes registers trash routes; all require a session
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", List(deps))
	router.DELETE("", Empty(deps))
	router.POST("/restore", RestoreMany(deps))
	router.POST("/delete", DeleteMany(deps))
}
