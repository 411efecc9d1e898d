package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/domain/study"
	"github.com/palabras/palabras-api/internal/events"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/store"
	"golang.org/x/sync/singleflight"
)

// Config holds the service-level switches.
type Config struct {
	// AllowDemotion enables DemoteItem.
	AllowDemotion bool
}

// Option configures the service.
type Option func(*serviceImpl)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

// WithEmitter sets the destination of engine events.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(s *serviceImpl) { s.emitter = emitter }
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	tx      store.TxManager
	engine  study.Engine
	emitter events.EventEmitter
	config  Config
	now     func() time.Time
	logger  *slog.Logger

	// sessions collapses concurrent study list requests for the same learner.
	sessions singleflight.Group
}

// NewService creates a new practice Service.
func NewService(
	tx store.TxManager,
	engine study.Engine,
	config Config,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if tx == nil {
		panic("tx cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		tx:      tx,
		engine:  engine,
		emitter: events.NopEmitter{},
		config:  config,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "practice_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetStudyList implements Service.GetStudyList.
func (s *serviceImpl) GetStudyList(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]study.SessionEntry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	// The shared build runs detached from any one caller's cancellation;
	// each caller stops waiting when its own context is done.
	key := learnerID.String() + ":" + strconv.Itoa(limit)
	ch := s.sessions.DoChan(key, func() (any, error) {
		return s.buildSession(context.WithoutCancel(ctx), learnerID, limit)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	entries := res.Val.([]study.SessionEntry)
	if res.Shared {
		// Callers must not share one backing array.
		entries = append([]study.SessionEntry(nil), entries...)
	}
	return entries, nil
}

func (s *serviceImpl) buildSession(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]study.SessionEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	stores := s.tx.Stores()

	learner, err := stores.Learners.Load(ctx, learnerID)
	if err != nil {
		return nil, s.wrap(ctx, "get_study_list", "failed to load learner", err)
	}

	pool, err := stores.Mastery.LoadCandidatePool(ctx, learnerID, true)
	if err != nil {
		return nil, s.wrap(ctx, "get_study_list", "failed to load candidate pool", err)
	}

	candidates := make([]study.Candidate, 0, len(pool))
	for _, entry := range pool {
		candidates = append(candidates, study.Candidate{Item: entry.Item, Record: entry.Record})
	}

	plan, err := s.engine.Plan(learner, candidates, limit)
	if err != nil {
		return nil, s.wrap(ctx, "get_study_list", "failed to plan session", err)
	}

	introduced := make(map[uuid.UUID]*domain.MasteryRecord, len(plan.Introduce))
	if len(plan.Introduce) > 0 {
		err = s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
			for _, item := range plan.Introduce {
				record, err := st.Mastery.GetOrCreateForUpdate(ctx, item.ID, learnerID)
				if err != nil {
					return fmt.Errorf("failed to introduce item %s: %w", item.ID, err)
				}
				introduced[item.ID] = record
			}
			return nil
		})
		if err != nil {
			return nil, s.wrap(ctx, "get_study_list", "failed to introduce fresh items", err)
		}
		log.Debug("introduced fresh items",
			slog.String("learner_id", learnerID.String()),
			slog.Int("count", len(introduced)))
	}

	entries := make([]study.SessionEntry, 0, len(plan.Entries))
	for _, c := range plan.Entries {
		record := c.Record
		if record == nil {
			record = introduced[c.Item.ID]
		}
		entries = append(entries, study.NewSessionEntry(c.Item, record))
	}

	log.Debug("built study list",
		slog.String("learner_id", learnerID.String()),
		slog.Int("requested", limit),
		slog.Int("returned", len(entries)))

	return entries, nil
}

// CheckResponse implements Service.CheckResponse.
func (s *serviceImpl) CheckResponse(
	ctx context.Context,
	learnerID uuid.UUID,
	submission ResponseSubmission,
) (*Verdict, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if submission.VocabularyID == uuid.Nil {
		return nil, domain.NewValidationError("vocab_id", "cannot be empty", domain.ErrInvalidID)
	}

	var (
		outcome    *study.GradeOutcome
		item       *domain.VocabularyItem
		ungradable bool
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		var err error
		item, err = st.Vocabulary.GetByID(ctx, submission.VocabularyID)
		if err != nil {
			return err
		}
		if !item.Gradable() {
			ungradable = true
			return domain.ErrUngradableItem
		}

		record, err := s.lockRecord(ctx, st, learnerID, submission)
		if err != nil {
			return err
		}

		profile, err := st.Learners.LoadForUpdate(ctx, learnerID)
		if err != nil {
			return err
		}

		now := s.now()
		outcome, err = s.engine.Grade(item, record, submission.Entered, now)
		if err != nil {
			return err
		}

		updated, err := s.engine.ApplyOutcome(profile, outcome, now)
		if err != nil {
			return err
		}

		stored, err := st.Mastery.Upsert(ctx, outcome.Record)
		if err != nil {
			return err
		}
		outcome.Record = stored

		return st.Learners.Save(ctx, updated)
	})

	if ungradable {
		log.Info("response for untranslated item",
			slog.String("learner_id", learnerID.String()),
			slog.String("vocab_id", submission.VocabularyID.String()))
		s.emit(ctx, events.TypeTranslationRequested, events.TranslationRequested{
			VocabularyID:     item.ID,
			LearningText:     item.LearningText,
			LearningLangCode: item.LearningLangCode,
			KnownLangCode:    item.KnownLangCode,
		})
	}
	if err != nil {
		return nil, s.wrap(ctx, "check_response", "failed to grade response", err)
	}

	r := outcome.Record
	s.emit(ctx, events.TypeGradeRecorded, events.GradeRecorded{
		LearnerID:         learnerID,
		VocabularyID:      item.ID,
		MasteryRecordID:   r.ID,
		Correct:           outcome.Correct,
		PercentageCorrect: r.PercentageCorrect,
		LastChange:        r.LastChange,
		Promoted:          outcome.Promoted,
	})

	log.Debug("graded response",
		slog.String("learner_id", learnerID.String()),
		slog.String("mastery_record_id", r.ID.String()),
		slog.Bool("correct", outcome.Correct),
		slog.Float64("percentage_correct", r.PercentageCorrect),
		slog.Bool("promoted", outcome.Promoted))

	return &Verdict{
		Correct:           outcome.Correct,
		VocabularyID:      item.ID,
		MasteryRecordID:   r.ID,
		Expected:          item.ReferenceText,
		Attempts:          r.Attempts,
		CorrectAttempts:   r.CorrectAttempts,
		PercentageCorrect: r.PercentageCorrect,
		LastChange:        r.LastChange,
		WellKnown:         r.WellKnown(),
		Promoted:          outcome.Promoted,
	}, nil
}

// lockRecord returns the locked mastery record a submission refers to,
// creating it when the learner has never seen the item.
func (s *serviceImpl) lockRecord(
	ctx context.Context,
	st store.Stores,
	learnerID uuid.UUID,
	submission ResponseSubmission,
) (*domain.MasteryRecord, error) {
	if submission.MasteryRecordID == nil {
		return st.Mastery.GetOrCreateForUpdate(ctx, submission.VocabularyID, learnerID)
	}

	record, err := st.Mastery.GetForUpdate(ctx, *submission.MasteryRecordID)
	if err != nil {
		return nil, err
	}
	if record.LearnerID != learnerID {
		return nil, store.ErrMasteryNotFound
	}
	if record.VocabularyID != submission.VocabularyID {
		return nil, ErrRecordMismatch
	}
	return record, nil
}

// GetItemStats implements Service.GetItemStats.
func (s *serviceImpl) GetItemStats(
	ctx context.Context,
	learnerID, recordID uuid.UUID,
) (*ItemStats, error) {
	record, err := s.tx.Stores().Mastery.Get(ctx, recordID)
	if err == nil && record.LearnerID != learnerID {
		err = store.ErrMasteryNotFound
	}
	if err != nil {
		return nil, s.wrap(ctx, "get_item_stats", "failed to load mastery record", err)
	}
	return newItemStats(record), nil
}

// GetLearnerStats implements Service.GetLearnerStats.
func (s *serviceImpl) GetLearnerStats(ctx context.Context, learnerID uuid.UUID) (*LearnerStats, error) {
	profile, err := s.tx.Stores().Learners.Load(ctx, learnerID)
	if err != nil {
		return nil, s.wrap(ctx, "get_learner_stats", "failed to load learner", err)
	}
	return newLearnerStats(profile), nil
}

// UpdateNotes implements Service.UpdateNotes.
func (s *serviceImpl) UpdateNotes(
	ctx context.Context,
	learnerID, recordID uuid.UUID,
	notes string,
) (*ItemStats, error) {
	var stats *ItemStats
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		record, err := s.ownedRecordForUpdate(ctx, st, learnerID, recordID)
		if err != nil {
			return err
		}
		if err := st.Mastery.UpdateNotes(ctx, recordID, notes); err != nil {
			return err
		}
		record.UserNotes = notes
		stats = newItemStats(record)
		return nil
	})
	if err != nil {
		return nil, s.wrap(ctx, "update_notes", "failed to update notes", err)
	}
	return stats, nil
}

// DemoteItem implements Service.DemoteItem.
func (s *serviceImpl) DemoteItem(
	ctx context.Context,
	learnerID, recordID uuid.UUID,
) (*ItemStats, error) {
	if !s.config.AllowDemotion {
		return nil, domain.ErrDemotionDisabled
	}

	var stats *ItemStats
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		record, err := s.ownedRecordForUpdate(ctx, st, learnerID, recordID)
		if err != nil {
			return err
		}
		if err := record.Demote(); err != nil {
			return err
		}
		stored, err := st.Mastery.Upsert(ctx, record)
		if err != nil {
			return err
		}
		stats = newItemStats(stored)
		return nil
	})
	if err != nil {
		return nil, s.wrap(ctx, "demote_item", "failed to demote item", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("demoted well-known item",
		slog.String("learner_id", learnerID.String()),
		slog.String("mastery_record_id", recordID.String()))
	return stats, nil
}

func (s *serviceImpl) ownedRecordForUpdate(
	ctx context.Context,
	st store.Stores,
	learnerID, recordID uuid.UUID,
) (*domain.MasteryRecord, error) {
	record, err := st.Mastery.GetForUpdate(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.LearnerID != learnerID {
		return nil, store.ErrMasteryNotFound
	}
	return record, nil
}

// SetReferenceText implements Service.SetReferenceText.
// The text is trimmed; a blank result is rejected on every backend.
func (s *serviceImpl) SetReferenceText(ctx context.Context, vocabularyID uuid.UUID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyReferenceText
	}
	if err := s.tx.Stores().Vocabulary.UpdateReferenceText(ctx, vocabularyID, text); err != nil {
		return s.wrap(ctx, "set_reference_text", "failed to update reference text", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("reference text back-filled",
		slog.String("vocab_id", vocabularyID.String()))
	return nil
}

// ListUntranslated implements Service.ListUntranslated.
func (s *serviceImpl) ListUntranslated(ctx context.Context, limit int) ([]*domain.VocabularyItem, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	items, err := s.tx.Stores().Vocabulary.ListUntranslated(ctx, limit)
	if err != nil {
		return nil, s.wrap(ctx, "list_untranslated", "failed to list untranslated items", err)
	}
	return items, nil
}

// RequestMissingTranslations implements Service.RequestMissingTranslations.
func (s *serviceImpl) RequestMissingTranslations(ctx context.Context, limit int) (int, error) {
	items, err := s.ListUntranslated(ctx, limit)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		s.emit(ctx, events.TypeTranslationRequested, events.TranslationRequested{
			VocabularyID:     item.ID,
			LearningText:     item.LearningText,
			LearningLangCode: item.LearningLangCode,
			KnownLangCode:    item.KnownLangCode,
		})
	}
	if len(items) > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("requested missing translations",
			slog.Int("count", len(items)))
	}
	return len(items), nil
}

// LearnerByCode implements Service.LearnerByCode.
func (s *serviceImpl) LearnerByCode(ctx context.Context, code string) (*domain.LearnerProfile, error) {
	if code == "" {
		return nil, domain.ErrLearnerCodeEmpty
	}
	profile, err := s.tx.Stores().Learners.LoadByCode(ctx, code)
	if err != nil {
		return nil, s.wrap(ctx, "learner_by_code", "failed to load learner", err)
	}
	return profile, nil
}

// CreateLearner implements Service.CreateLearner.
func (s *serviceImpl) CreateLearner(
	ctx context.Context,
	code, displayName string,
	maxRotation, minPool int,
) (*domain.LearnerProfile, error) {
	profile, err := domain.NewLearnerProfile(code, displayName)
	if err != nil {
		return nil, err
	}
	if maxRotation == 0 {
		maxRotation = profile.MaxRotationSize
	}
	if minPool == 0 {
		minPool = profile.MinPoolSize
	}
	if err := profile.Configure(maxRotation, minPool); err != nil {
		return nil, err
	}

	if err := s.tx.Stores().Learners.Create(ctx, profile); err != nil {
		return nil, s.wrap(ctx, "create_learner", "failed to create learner", err)
	}
	return profile, nil
}

// AddVocabulary implements Service.AddVocabulary.
func (s *serviceImpl) AddVocabulary(ctx context.Context, input VocabularyInput) (*domain.VocabularyItem, error) {
	item, err := domain.NewVocabularyItem(input.LearningText, input.ReferenceText)
	if err != nil {
		return nil, err
	}
	item.Alternatives = input.Alternatives
	item.Hint = input.Hint
	item.PartOfSpeech = input.PartOfSpeech
	if input.KnownLangCode != "" {
		item.KnownLangCode = input.KnownLangCode
	}
	if input.LearningLangCode != "" {
		item.LearningLangCode = input.LearningLangCode
	}

	if err := s.tx.Stores().Vocabulary.Create(ctx, item); err != nil {
		return nil, s.wrap(ctx, "add_vocabulary", "failed to create vocabulary item", err)
	}
	return item, nil
}

// emit publishes an event. Delivery failures are logged, never returned:
// the mutation they describe has already been committed.
func (s *serviceImpl) emit(ctx context.Context, eventType string, payload any) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		log.Error("failed to build event", slog.String("event_type", eventType), slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit event",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}

// wrap logs unexpected failures and wraps them in a ServiceError.
// Errors from the engine taxonomy pass through unchanged.
func (s *serviceImpl) wrap(ctx context.Context, operation, message string, err error) error {
	if isTaxonomyError(err) {
		return err
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Error(message,
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	return NewServiceError(operation, message, err)
}
