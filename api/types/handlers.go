package types

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxnote/transcript-api/internal/models"
	"github.com/voxnote/transcript-api/internal/services/transcripts"
	apperrors "github.com/voxnote/transcript-api/pkg/errors"
)

// Handler utility functions to reduce duplication across handlers

// BindJSONOrError attempts to bind JSON request body to target struct
// Returns false and sends error response if binding fails
func BindJSONOrError(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  StatusError,
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// SendBadRequest sends a standardized bad request response
func SendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Status: StatusError, Error: message})
}

// SendUnauthorized sends a standardized unauthorized response
func SendUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Status: StatusError, Error: message})
}

// SendNotFound sends a standardized not found response
func SendNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Status: StatusError, Error: message})
}

// SendInternalError sends a standardized internal server error response
func SendInternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Status: StatusError, Error: message})
}

// SendServiceError maps a transcript service error to its HTTP status.
// Not-found covers both missing records and records owned by someone else;
// the two are indistinguishable on the wire.
func SendServiceError(c *gin.Context, err error) {
	switch {
	case transcripts.IsNotFound(err):
		SendNotFound(c, "Transcript not found")
	case transcripts.IsAuth(err):
		SendUnauthorized(c, "Session invalid or expired")
	case errors.Is(err, transcripts.ErrInvalidInput):
		SendBadRequest(c, err.Error())
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.GetHTTPCode(), ErrorResponse{Status: StatusError, Error: appErr.Message})
			return
		}
		SendInternalError(c, "Transcript operation failed")
	}
}

// ToTranscript converts a model to its wire shape
func ToTranscript(t *models.Transcript) *Transcript {
	return &Transcript{
		ID:        t.ID,
		Title:     t.Title,
		Language:  t.Language,
		Content:   t.Content,
		WordCount: t.WordCount(),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		DeletedAt: t.DeletedAt,
	}
}

// ToTranscripts converts a listing to wire shapes
func ToTranscripts(items []models.Transcript) []Transcript {
	results := make([]Transcript, 0, len(items))
	for i := range items {
		results = append(results, *ToTranscript(&items[i]))
	}
	return results
}
