package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/domain/study"
	"github.com/palabras/palabras-api/internal/service/practice"
	"github.com/stretchr/testify/mock"
)

// mockPracticeService is a testify mock of practice.Service.
type mockPracticeService struct {
	mock.Mock
}

var _ practice.Service = (*mockPracticeService)(nil)

func (m *mockPracticeService) GetStudyList(ctx context.Context, learnerID uuid.UUID, limit int) ([]study.SessionEntry, error) {
	args := m.Called(ctx, learnerID, limit)
	entries, _ := args.Get(0).([]study.SessionEntry)
	return entries, args.Error(1)
}

func (m *mockPracticeService) CheckResponse(
	ctx context.Context,
	learnerID uuid.UUID,
	submission practice.ResponseSubmission,
) (*practice.Verdict, error) {
	args := m.Called(ctx, learnerID, submission)
	verdict, _ := args.Get(0).(*practice.Verdict)
	return verdict, args.Error(1)
}

func (m *mockPracticeService) GetItemStats(ctx context.Context, learnerID, recordID uuid.UUID) (*practice.ItemStats, error) {
	args := m.Called(ctx, learnerID, recordID)
	stats, _ := args.Get(0).(*practice.ItemStats)
	return stats, args.Error(1)
}

func (m *mockPracticeService) GetLearnerStats(ctx context.Context, learnerID uuid.UUID) (*practice.LearnerStats, error) {
	args := m.Called(ctx, learnerID)
	stats, _ := args.Get(0).(*practice.LearnerStats)
	return stats, args.Error(1)
}

func (m *mockPracticeService) UpdateNotes(
	ctx context.Context,
	learnerID, recordID uuid.UUID,
	notes string,
) (*practice.ItemStats, error) {
	args := m.Called(ctx, learnerID, recordID, notes)
	stats, _ := args.Get(0).(*practice.ItemStats)
	return stats, args.Error(1)
}

func (m *mockPracticeService) DemoteItem(ctx context.Context, learnerID, recordID uuid.UUID) (*practice.ItemStats, error) {
	args := m.Called(ctx, learnerID, recordID)
	stats, _ := args.Get(0).(*practice.ItemStats)
	return stats, args.Error(1)
}

func (m *mockPracticeService) SetReferenceText(ctx context.Context, vocabularyID uuid.UUID, text string) error {
	return m.Called(ctx, vocabularyID, text).Error(0)
}

func (m *mockPracticeService) ListUntranslated(ctx context.Context, limit int) ([]*domain.VocabularyItem, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]*domain.VocabularyItem)
	return items, args.Error(1)
}

func (m *mockPracticeService) RequestMissingTranslations(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

func (m *mockPracticeService) LearnerByCode(ctx context.Context, code string) (*domain.LearnerProfile, error) {
	args := m.Called(ctx, code)
	profile, _ := args.Get(0).(*domain.LearnerProfile)
	return profile, args.Error(1)
}

func (m *mockPracticeService) CreateLearner(
	ctx context.Context,
	code, displayName string,
	maxRotation, minPool int,
) (*domain.LearnerProfile, error) {
	args := m.Called(ctx, code, displayName, maxRotation, minPool)
	profile, _ := args.Get(0).(*domain.LearnerProfile)
	return profile, args.Error(1)
}

func (m *mockPracticeService) AddVocabulary(ctx context.Context, input practice.VocabularyInput) (*domain.VocabularyItem, error) {
	args := m.Called(ctx, input)
	item, _ := args.Get(0).(*domain.VocabularyItem)
	return item, args.Error(1)
}
