package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/store"
)

const learnerColumns = `id, code, display_name, max_rotation_size, min_pool_size,
		num_known, num_correct, num_incorrect, total_percentage, created_at, updated_at`

// PostgresLearnerStore implements the store.LearnerStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLearnerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLearnerStore creates a new PostgreSQL implementation of the LearnerStore interface.
func NewPostgresLearnerStore(db store.DBTX, logger *slog.Logger) *PostgresLearnerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLearnerStore{
		db:     db,
		logger: logger.With(slog.String("component", "learner_store")),
	}
}

// Ensure PostgresLearnerStore implements store.LearnerStore interface
var _ store.LearnerStore = (*PostgresLearnerStore)(nil)

// WithTx returns a new store that runs its queries in tx.
func (s *PostgresLearnerStore) WithTx(tx *sql.Tx) *PostgresLearnerStore {
	return &PostgresLearnerStore{db: tx, logger: s.logger}
}

// Create implements store.LearnerStore.Create
func (s *PostgresLearnerStore) Create(ctx context.Context, profile *domain.LearnerProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO learners (` + learnerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.ID,
		profile.Code,
		profile.DisplayName,
		profile.MaxRotationSize,
		profile.MinPoolSize,
		profile.NumKnown,
		profile.NumCorrect,
		profile.NumIncorrect,
		profile.TotalPercentage,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		log.Warn("failed to create learner",
			slog.String("error", err.Error()),
			slog.String("learner_code", profile.Code))
		return MapUniqueViolation(err, store.ErrLearnerCodeExists)
	}

	log.Info("learner created",
		slog.String("learner_id", profile.ID.String()),
		slog.String("learner_code", profile.Code))
	return nil
}

// Load implements store.LearnerStore.Load
func (s *PostgresLearnerStore) Load(ctx context.Context, id uuid.UUID) (*domain.LearnerProfile, error) {
	return s.queryOne(ctx, `SELECT `+learnerColumns+` FROM learners WHERE id = $1`, id)
}

// LoadForUpdate implements store.LearnerStore.LoadForUpdate
func (s *PostgresLearnerStore) LoadForUpdate(ctx context.Context, id uuid.UUID) (*domain.LearnerProfile, error) {
	return s.queryOne(ctx, `SELECT `+learnerColumns+` FROM learners WHERE id = $1 FOR UPDATE`, id)
}

// LoadByCode implements store.LearnerStore.LoadByCode
func (s *PostgresLearnerStore) LoadByCode(ctx context.Context, code string) (*domain.LearnerProfile, error) {
	return s.queryOne(ctx, `SELECT `+learnerColumns+` FROM learners WHERE code = $1`, code)
}

func (s *PostgresLearnerStore) queryOne(ctx context.Context, query string, arg any) (*domain.LearnerProfile, error) {
	var p domain.LearnerProfile
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID,
		&p.Code,
		&p.DisplayName,
		&p.MaxRotationSize,
		&p.MinPoolSize,
		&p.NumKnown,
		&p.NumCorrect,
		&p.NumIncorrect,
		&p.TotalPercentage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err, store.ErrLearnerNotFound)
	}
	return &p, nil
}

// Save implements store.LearnerStore.Save
func (s *PostgresLearnerStore) Save(ctx context.Context, profile *domain.LearnerProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE learners
		SET display_name = $1, max_rotation_size = $2, min_pool_size = $3,
			num_known = $4, num_correct = $5, num_incorrect = $6,
			total_percentage = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(ctx, query,
		profile.DisplayName,
		profile.MaxRotationSize,
		profile.MinPoolSize,
		profile.NumKnown,
		profile.NumCorrect,
		profile.NumIncorrect,
		profile.TotalPercentage,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		log.Error("failed to save learner",
			slog.String("error", err.Error()),
			slog.String("learner_id", profile.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrLearnerNotFound)
}
