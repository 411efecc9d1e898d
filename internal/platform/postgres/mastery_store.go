package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/store"
)

const masteryColumns = `id, vocabulary_id, learner_id, attempts, correct_attempts,
		percentage_correct, last_change, state, user_notes, created_at,
		last_tested_at, first_known_at`

// PostgresMasteryStore implements the store.MasteryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresMasteryStore creates a new PostgreSQL implementation of the MasteryStore interface.
func NewPostgresMasteryStore(db store.DBTX, logger *slog.Logger) *PostgresMasteryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "mastery_store")),
		now:    time.Now,
	}
}

// Ensure PostgresMasteryStore implements store.MasteryStore interface
var _ store.MasteryStore = (*PostgresMasteryStore)(nil)

// WithTx returns a new store that runs its queries in tx.
func (s *PostgresMasteryStore) WithTx(tx *sql.Tx) *PostgresMasteryStore {
	return &PostgresMasteryStore{db: tx, logger: s.logger, now: s.now}
}

// Get implements store.MasteryStore.Get
func (s *PostgresMasteryStore) Get(ctx context.Context, id uuid.UUID) (*domain.MasteryRecord, error) {
	return s.queryOne(ctx, `SELECT `+masteryColumns+` FROM mastery_records WHERE id = $1`, id)
}

// GetForUpdate implements store.MasteryStore.GetForUpdate
func (s *PostgresMasteryStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.MasteryRecord, error) {
	return s.queryOne(ctx, `SELECT `+masteryColumns+` FROM mastery_records WHERE id = $1 FOR UPDATE`, id)
}

// GetOrCreateForUpdate implements store.MasteryStore.GetOrCreateForUpdate.
// The insert is a no-op when the pair exists, so concurrent callers converge
// on the row that won the unique constraint.
func (s *PostgresMasteryStore) GetOrCreateForUpdate(
	ctx context.Context,
	vocabularyID, learnerID uuid.UUID,
) (*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fresh, err := domain.NewMasteryRecord(vocabularyID, learnerID, s.now())
	if err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO mastery_records (id, vocabulary_id, learner_id, state, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (vocabulary_id, learner_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, insert,
		fresh.ID, fresh.VocabularyID, fresh.LearnerID, string(fresh.State), fresh.CreatedAt)
	if err != nil {
		log.Error("failed to materialize mastery record",
			slog.String("error", err.Error()),
			slog.String("vocab_id", vocabularyID.String()),
			slog.String("learner_id", learnerID.String()))
		if IsForeignKeyViolation(err) {
			return nil, store.ErrVocabularyNotFound
		}
		return nil, MapError(err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		log.Debug("mastery record created",
			slog.String("mastery_record_id", fresh.ID.String()),
			slog.String("vocab_id", vocabularyID.String()))
	}

	return s.queryOne(ctx, `
		SELECT `+masteryColumns+`
		FROM mastery_records
		WHERE vocabulary_id = $1 AND learner_id = $2
		FOR UPDATE`, vocabularyID, learnerID)
}

// LoadCandidatePool implements store.MasteryStore.LoadCandidatePool
func (s *PostgresMasteryStore) LoadCandidatePool(
	ctx context.Context,
	learnerID uuid.UUID,
	excludeWellKnown bool,
) ([]store.CandidateEntry, error) {
	query := `
		SELECT v.id, v.learning_text, v.reference_text, v.alternatives, v.known_lang_code,
			v.learning_lang_code, v.term_count, v.hint, v.part_of_speech, v.created_at,
			m.id, m.attempts, m.correct_attempts, m.percentage_correct, m.last_change,
			m.state, m.user_notes, m.created_at, m.last_tested_at, m.first_known_at
		FROM vocabulary_items v
		LEFT JOIN mastery_records m ON m.vocabulary_id = v.id AND m.learner_id = $1
		WHERE NOT $2 OR m.state IS DISTINCT FROM 'well_known'
		ORDER BY v.created_at ASC, v.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, learnerID, excludeWellKnown)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var pool []store.CandidateEntry
	for rows.Next() {
		entry, err := scanCandidate(rows, learnerID)
		if err != nil {
			return nil, err
		}
		pool = append(pool, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return pool, nil
}

func scanCandidate(rows *sql.Rows, learnerID uuid.UUID) (store.CandidateEntry, error) {
	var (
		item         domain.VocabularyItem
		alternatives []byte
		recordID     uuid.NullUUID
		attempts     sql.NullInt64
		correct      sql.NullInt64
		pct          sql.NullFloat64
		lastChange   sql.NullFloat64
		state        sql.NullString
		notes        sql.NullString
		createdAt    sql.NullTime
		lastTested   sql.NullTime
		firstKnown   sql.NullTime
	)

	err := rows.Scan(
		&item.ID, &item.LearningText, &item.ReferenceText, &alternatives, &item.KnownLangCode,
		&item.LearningLangCode, &item.TermCount, &item.Hint, &item.PartOfSpeech, &item.CreatedAt,
		&recordID, &attempts, &correct, &pct, &lastChange,
		&state, &notes, &createdAt, &lastTested, &firstKnown,
	)
	if err != nil {
		return store.CandidateEntry{}, MapError(err)
	}

	item.Alternatives, err = decodeAlternatives(alternatives)
	if err != nil {
		return store.CandidateEntry{}, err
	}

	entry := store.CandidateEntry{Item: &item}
	if recordID.Valid {
		entry.Record = &domain.MasteryRecord{
			ID:                recordID.UUID,
			VocabularyID:      item.ID,
			LearnerID:         learnerID,
			Attempts:          int(attempts.Int64),
			CorrectAttempts:   int(correct.Int64),
			PercentageCorrect: pct.Float64,
			LastChange:        lastChange.Float64,
			State:             domain.MasteryState(state.String),
			UserNotes:         notes.String,
			CreatedAt:         createdAt.Time,
			LastTestedAt:      nullTime(lastTested),
			FirstKnownAt:      nullTime(firstKnown),
		}
	}
	return entry, nil
}

// Upsert implements store.MasteryStore.Upsert
func (s *PostgresMasteryStore) Upsert(ctx context.Context, record *domain.MasteryRecord) (*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO mastery_records (` + masteryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (vocabulary_id, learner_id) DO UPDATE SET
			attempts = EXCLUDED.attempts,
			correct_attempts = EXCLUDED.correct_attempts,
			percentage_correct = EXCLUDED.percentage_correct,
			last_change = EXCLUDED.last_change,
			state = EXCLUDED.state,
			user_notes = EXCLUDED.user_notes,
			last_tested_at = EXCLUDED.last_tested_at,
			first_known_at = COALESCE(mastery_records.first_known_at, EXCLUDED.first_known_at)
		RETURNING ` + masteryColumns

	stored, err := scanMastery(s.db.QueryRowContext(ctx, query,
		record.ID,
		record.VocabularyID,
		record.LearnerID,
		record.Attempts,
		record.CorrectAttempts,
		record.PercentageCorrect,
		record.LastChange,
		string(record.State),
		record.UserNotes,
		record.CreatedAt,
		record.LastTestedAt,
		record.FirstKnownAt,
	))
	if err != nil {
		log.Error("failed to upsert mastery record",
			slog.String("error", err.Error()),
			slog.String("mastery_record_id", record.ID.String()))
		if IsForeignKeyViolation(err) {
			return nil, store.ErrVocabularyNotFound
		}
		return nil, MapError(err)
	}
	return stored, nil
}

// UpdateNotes implements store.MasteryStore.UpdateNotes
func (s *PostgresMasteryStore) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE mastery_records SET user_notes = $1 WHERE id = $2`, notes, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrMasteryNotFound)
}

func (s *PostgresMasteryStore) queryOne(ctx context.Context, query string, args ...any) (*domain.MasteryRecord, error) {
	record, err := scanMastery(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapNotFound(err, store.ErrMasteryNotFound)
	}
	return record, nil
}

func scanMastery(row rowScanner) (*domain.MasteryRecord, error) {
	var (
		r          domain.MasteryRecord
		state      string
		lastTested sql.NullTime
		firstKnown sql.NullTime
	)
	err := row.Scan(
		&r.ID,
		&r.VocabularyID,
		&r.LearnerID,
		&r.Attempts,
		&r.CorrectAttempts,
		&r.PercentageCorrect,
		&r.LastChange,
		&state,
		&r.UserNotes,
		&r.CreatedAt,
		&lastTested,
		&firstKnown,
	)
	if err != nil {
		return nil, err
	}
	r.State = domain.MasteryState(state)
	r.LastTestedAt = nullTime(lastTested)
	r.FirstKnownAt = nullTime(firstKnown)
	return &r, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
