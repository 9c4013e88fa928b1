package transcripts

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxnote/transcript-api/api/types"
	svc "github.com/voxnote/transcript-api/internal/services/transcripts"
)

// ownerFrom returns the authenticated user id, or "" for anonymous
// requests. The empty owner routes the operation to the local store.
func ownerFrom(c *gin.Context) string {
	return c.GetString("user_id")
}

// Save persists a new transcript
// @Summary      Save transcript
// @Description  Save a dictated transcript. Authenticated saves go to the remote store with a local mirror; anonymous saves or remote outages produce a local save flagged savedLocally.
// @Tags         transcripts
// @Accept       json
// @Produce      json
// @Param        transcript body types.SaveTranscriptRequest true "Transcript content"
// @Success      201 {object} types.SaveResponse "Saved transcript"
// @Failure      400 {object} types.ErrorResponse "Empty content"
// @Failure      401 {object} types.ErrorResponse "Rejected session"
// @Failure      500 {object} types.ErrorResponse "Persistence failure"
// @Router       /api/v1/transcripts [post]
func Save(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.SaveTranscriptRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		result, err := deps.Router.Save(c.Request.Context(), svc.SaveRequest{
			Content:  req.Content,
			Title:    req.Title,
			Language: req.Language,
			Owner:    ownerFrom(c),
		})
		if err != nil {
			types.SendServiceError(c, err)
			return
		}

		message := "Transcript saved"
		if result.SavedLocally {
			message = "Transcript saved locally"
		}
		c.JSON(http.StatusCreated, types.SaveResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: message},
			TranscriptID: result.TranscriptID,
			SavedLocally: result.SavedLocally,
		})
	}
}

// List returns the caller's active transcripts
// @Summary      List active transcripts
// @Description  List the caller's active (non-trashed) transcripts, most recently updated first
// @Tags         transcripts
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} types.TranscriptsResponse "Active transcripts"
// @Failure      401 {object} types.ErrorResponse "Missing or invalid session"
// @Router       /api/v1/transcripts [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := deps.TranscriptService.ListActive(c.Request.Context(), ownerFrom(c))
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

// Get returns a single transcript with its current content
// @Summary      Get transcript
// @Description  Fetch one transcript with its current content. Served from a short-lived in-memory cache when fresh.
// @Tags         transcripts
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Transcript ID"
// @Success      200 {object} types.SingleTranscriptResponse "Transcript with content"
// @Failure      404 {object} types.ErrorResponse "Not found or not owned"
// @Router       /api/v1/transcripts/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		transcript, err := deps.TranscriptService.Get(c.Request.Context(), ownerFrom(c), c.Param("id"))
		if err != nil {
			types.SendServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.SingleTranscriptResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Transcript:   types.ToTranscript(transcript),
		})
	}
}

// Update appends a new content revision
// @Summary      Update transcript
// @Description  Append a new content revision. History is append-only; prior revisions are retained.
// @Tags         transcripts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "Transcript ID"
// @Param        transcript body types.UpdateTranscriptRequest true "New content"
// @Success      200 {object} types.BaseResponse "Revision appended"
// @Failure      400 {object} types.ErrorResponse "Empty content"
// @Failure      404 {object} types.ErrorResponse "Not found or not owned"
// @Router       /api/v1/transcripts/{id} [put]
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.UpdateTranscriptRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		if err := deps.Router.Update(c.Request.Context(), ownerFrom(c), c.Param("id"), req.Content); err != nil {
			types.SendServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Transcript updated"})
	}
}

// SoftDelete moves a transcript to the trash
// @Summary      Move transcript to trash
// @Description  Soft-delete a transcript. It stays restorable for the retention window. Deleting an already trashed transcript is a no-op.
// @Tags         transcripts
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Transcript ID"
// @Success      200 {object} types.BaseResponse "Moved to trash"
// @Failure      404 {object} types.ErrorResponse "Not found or not owned"
// @Router       /api/v1/transcripts/{id} [delete]
func SoftDelete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.TranscriptService.SoftDelete(c.Request.Context(), ownerFrom(c), c.Param("id")); err != nil {
			types.SendServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Transcript moved to trash"})
	}
}

// Restore moves a trashed transcript back to the active state
// @Summary      Restore transcript
// @Description  Restore a trashed transcript. Fails with 404 once the retention window has passed.
// @Tags         transcripts
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Transcript ID"
// @Success      200 {object} types.BaseResponse "Restored"
// @Failure      404 {object} types.ErrorResponse "Not found, not owned, or expired"
// @Router       /api/v1/transcripts/{id}/restore [post]
func Restore(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.TranscriptService.Restore(c.Request.Context(), ownerFrom(c), c.Param("id")); err != nil {
			types.SendServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Transcript restored"})
	}
}

// PermanentDelete purges a transcript irreversibly
// @Summary      Permanently delete transcript
// @Description  Purge a transcript and its revision history. Allowed from both the active and the trashed state.
// @Tags         transcripts
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Transcript ID"
// @Success      200 {object} types.BaseResponse "Purged"
// @Failure      404 {object} types.ErrorResponse "Not found or not owned"
// @Router       /api/v1/transcripts/{id}/permanent [delete]
func PermanentDelete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.TranscriptService.PermanentDelete(c.Request.Context(), ownerFrom(c), c.Param("id")); err != nil {
			types.SendServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.BaseResponse{Status: types.StatusOK, Message: "Transcript permanently deleted"})
	}
}
