package trash

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxnote/transcript-api/api/types"
)

func ownerFrom(c *gin.Context) string {
	return c.GetString("user_id")
}

// List returns the caller's trash
// @Summary      List trash
// @Description  List trashed transcripts still inside the retention window. Expired entries are swept before listing.
// @Tags         trash
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} types.TranscriptsResponse "Trashed transcripts"
// @Failure      401 {object} types.ErrorResponse "Missing or invalid session"
// @Router       /api/v1/trash [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := deps.TranscriptService.ListTrash(c.Request.Context(), ownerFrom(c))
		if err != nil {
			types.SendServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.TranscriptsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Transcripts:  types.ToTranscripts(items),
			Count:        len(items),
		})
	}
}

// RestoreMany restores a batch of trashed transcripts
// @Summary      Restore transcripts
// @Description  Restore a set of trashed transcripts. The batch is not atomic; each id is processed independently and the counts are aggregated.
// @Tags         trash
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        ids body types.BatchRequest true "Transcript ids"
// @Success      200 {object} types.BatchResponse "Aggregate counts"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Router       /api/v1/trash/restore [post]
func RestoreMany(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.BatchRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		result, err := deps.TranscriptService.RestoreMany(c.Request.Context(), ownerFrom(c), req.IDs)
		if err != nil {
			types.SendServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.BatchResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Restore batch processed"},
			Processed:    result.Processed,
			Failed:       result.Failed,
		})
	}
}

// DeleteMany purges a batch of transcripts
// @Summary      Permanently delete transcripts
// @Description  Purge a set of transcripts. The batch is not atomic; each id is processed independently and the counts are aggregated.
// @Tags         trash
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        ids body types.BatchRequest true "Transcript ids"
// @Success      200 {object} types.BatchResponse "Aggregate counts"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Router       /api/v1/trash/delete [post]
func DeleteMany(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.BatchRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		result, err := deps.TranscriptService.PermanentDeleteMany(c.Request.Context(), ownerFrom(c), req.IDs)
		if err != nil {
			types.SendServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.BatchResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Delete batch processed"},
			Processed:    result.Processed,
			Failed:       result.Failed,
		})
	}
}

// Empty purges everything in the caller's trash
// @Summary      Empty trash
// @Description  Permanently delete every transcript currently in the trash.
// @Tags         trash
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} types.BatchResponse "Aggregate counts"
// @Failure      401 {object} types.ErrorResponse "Missing or invalid session"
// @Router       /api/v1/trash [delete]
func Empty(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := deps.TranscriptService.EmptyTrash(c.Request.Context(), ownerFrom(c))
		if err != nil {
			types.SendServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.BatchResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Trash emptied"},
			Processed:    result.Processed,
			Failed:       result.Failed,
		})
	}
}
