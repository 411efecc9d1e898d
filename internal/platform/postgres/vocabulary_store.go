package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/store"
)

const vocabularyColumns = `id, learning_text, reference_text, alternatives, known_lang_code,
		learning_lang_code, term_count, hint, part_of_speech, created_at`

// PostgresVocabularyStore implements the store.VocabularyStore interface
// using a PostgreSQL database as the storage backend.
type PostgresVocabularyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabularyStore creates a new PostgreSQL implementation of the VocabularyStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresVocabularyStore(db store.DBTX, logger *slog.Logger) *PostgresVocabularyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVocabularyStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_store")),
	}
}

// Ensure PostgresVocabularyStore implements store.VocabularyStore interface
var _ store.VocabularyStore = (*PostgresVocabularyStore)(nil)

// WithTx returns a new store that runs its queries in tx.
func (s *PostgresVocabularyStore) WithTx(tx *sql.Tx) *PostgresVocabularyStore {
	return &PostgresVocabularyStore{db: tx, logger: s.logger}
}

// Create implements store.VocabularyStore.Create
func (s *PostgresVocabularyStore) Create(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("vocabulary validation failed during create",
			slog.String("error", err.Error()),
			slog.String("vocab_id", item.ID.String()))
		return err
	}

	alternatives, err := encodeAlternatives(item.Alternatives)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO vocabulary_items (` + vocabularyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		item.ID,
		item.LearningText,
		item.ReferenceText,
		alternatives,
		item.KnownLangCode,
		item.LearningLangCode,
		item.TermCount,
		item.Hint,
		item.PartOfSpeech,
		item.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create vocabulary item",
			slog.String("error", err.Error()),
			slog.String("vocab_id", item.ID.String()))
		return MapUniqueViolation(err, store.ErrLearningTextExists)
	}

	log.Debug("vocabulary item created",
		slog.String("vocab_id", item.ID.String()),
		slog.Int("term_count", item.TermCount))
	return nil
}

// GetByID implements store.VocabularyStore.GetByID
func (s *PostgresVocabularyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	query := `SELECT ` + vocabularyColumns + ` FROM vocabulary_items WHERE id = $1`

	item, err := scanVocabulary(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrVocabularyNotFound)
	}
	return item, nil
}

// UpdateReferenceText implements store.VocabularyStore.UpdateReferenceText
func (s *PostgresVocabularyStore) UpdateReferenceText(ctx context.Context, id uuid.UUID, text string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE vocabulary_items SET reference_text = $1 WHERE id = $2`, text, id)
	if err != nil {
		log.Error("failed to update reference text",
			slog.String("error", err.Error()),
			slog.String("vocab_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrVocabularyNotFound)
}

// ListUntranslated implements store.VocabularyStore.ListUntranslated
func (s *PostgresVocabularyStore) ListUntranslated(ctx context.Context, limit int) ([]*domain.VocabularyItem, error) {
	query := `
		SELECT ` + vocabularyColumns + `
		FROM vocabulary_items
		WHERE btrim(reference_text) = ''
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.VocabularyItem
	for rows.Next() {
		item, err := scanVocabulary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vocabulary row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVocabulary(row rowScanner) (*domain.VocabularyItem, error) {
	var item domain.VocabularyItem
	var alternatives []byte

	err := row.Scan(
		&item.ID,
		&item.LearningText,
		&item.ReferenceText,
		&alternatives,
		&item.KnownLangCode,
		&item.LearningLangCode,
		&item.TermCount,
		&item.Hint,
		&item.PartOfSpeech,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Alternatives, err = decodeAlternatives(alternatives)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func decodeAlternatives(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var alts []string
	if err := json.Unmarshal(raw, &alts); err != nil {
		return nil, fmt.Errorf("failed to decode alternatives: %w", err)
	}
	if len(alts) == 0 {
		return nil, nil
	}
	return alts, nil
}

func encodeAlternatives(alts []string) ([]byte, error) {
	if alts == nil {
		alts = []string{}
	}
	data, err := json.Marshal(alts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alternatives: %w", err)
	}
	return data, nil
}
