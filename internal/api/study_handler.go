package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/palabras/palabras-api/internal/api/shared"
	"github.com/palabras/palabras-api/internal/domain/study"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/service/practice"
)

// DefaultStudyLimit is the study list size used when no limit is given.
const DefaultStudyLimit = 10

// MaxStudyLimit caps the limit query parameter.
const MaxStudyLimit = 100

// StudyHandler serves the study list, grading and statistics endpoints.
type StudyHandler struct {
	practice practice.Service
	logger   *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(svc practice.Service, logger *slog.Logger) *StudyHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("practice service cannot be nil for StudyHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StudyHandler{
		practice: svc,
		logger:   logger.With(slog.String("component", "study_handler")),
	}
}

// GetStudyList handles GET /api/study?limit=N.
func (h *StudyHandler) GetStudyList(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	limit := DefaultStudyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n > MaxStudyLimit {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	entries, err := h.practice.GetStudyList(r.Context(), learnerID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if entries == nil {
		entries = []study.SessionEntry{}
	}

	log.Debug("study list served",
		slog.String("learner_id", learnerID.String()),
		slog.Int("count", len(entries)))
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// SubmitResponse handles POST /api/responses.
func (h *StudyHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	var req SubmitResponseRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	verdict, err := h.practice.CheckResponse(r.Context(), learnerID, practice.ResponseSubmission{
		VocabularyID:    req.VocabularyID,
		MasteryRecordID: req.MasteryRecordID,
		Entered:         req.Entered,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, verdict)
}

// GetItemStats handles GET /api/mastery/{id}/stats.
func (h *StudyHandler) GetItemStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, recordID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	stats, err := h.practice.GetItemStats(r.Context(), learnerID, recordID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// GetLearnerStats handles GET /api/learners/me/stats.
func (h *StudyHandler) GetLearnerStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	stats, err := h.practice.GetLearnerStats(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// UpdateNotes handles PUT /api/mastery/{id}/notes.
func (h *StudyHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, recordID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateNotesRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	stats, err := h.practice.UpdateNotes(r.Context(), learnerID, recordID, req.Notes)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// DemoteItem handles POST /api/mastery/{id}/demote.
func (h *StudyHandler) DemoteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, recordID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	stats, err := h.practice.DemoteItem(r.Context(), learnerID, recordID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("item demoted",
		slog.String("learner_id", learnerID.String()),
		slog.String("mastery_record_id", recordID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
