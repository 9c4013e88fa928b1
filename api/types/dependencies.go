package types

import (
	"github.com/voxnote/transcript-api/internal/database"
	"github.com/voxnote/transcript-api/internal/services/transcripts"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB                *database.DB
	Router            transcripts.Router
	TranscriptService transcripts.Service
}
