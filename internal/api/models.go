package api

import (
	"time"

	"github.com/google/uuid"
)

// TokenRequest defines the payload of the token endpoint.
type TokenRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// TokenResponse defines the successful response of the token endpoint.
type TokenResponse struct {
	LearnerID   uuid.UUID `json:"learner_id"`
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SubmitResponseRequest is the body of POST /api/responses.
type SubmitResponseRequest struct {
	VocabularyID    uuid.UUID  `json:"vocab_id" validate:"required"`
	MasteryRecordID *uuid.UUID `json:"mastery_record_id,omitempty"`
	Entered         string     `json:"entered" validate:"max=512"`
}

// UpdateNotesRequest is the body of PUT /api/mastery/{id}/notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}
