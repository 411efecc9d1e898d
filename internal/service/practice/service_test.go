package practice

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/domain/study"
	"github.com/palabras/palabras-api/internal/events"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/platform/memstore"
	"github.com/palabras/palabras-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db      *memstore.DB
	svc     Service
	learner *domain.LearnerProfile
	items   []*domain.VocabularyItem

	mu     sync.Mutex
	events []*events.Event
}

func (f *fixture) recorded(eventType string) []*events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*events.Event
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newFixture(t *testing.T, words int, cfg Config) *fixture {
	t.Helper()
	ctx := context.Background()
	log, _ := logger.NewTestLogger(t)

	f := &fixture{db: memstore.New(memstore.WithClock(func() time.Time { return testNow }))}

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.HandlerFunc(func(_ context.Context, e *events.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, e)
		return nil
	}))

	f.svc = NewService(f.db, study.NewDefaultEngine(), cfg, log,
		WithClock(func() time.Time { return testNow }),
		WithEmitter(emitter))

	learner, err := f.svc.CreateLearner(ctx, "learner-"+uuid.NewString()[:8], "Test Learner", 5, 3)
	require.NoError(t, err)
	f.learner = learner

	for i := 0; i < words; i++ {
		item, err := f.svc.AddVocabulary(ctx, VocabularyInput{
			LearningText:  fmt.Sprintf("palabra%d", i),
			ReferenceText: fmt.Sprintf("word%d", i),
		})
		require.NoError(t, err)
		f.items = append(f.items, item)
	}
	return f
}

// spyTx fails the test when storage is reached.
type spyTx struct {
	t *testing.T
}

func (s spyTx) Stores() store.Stores {
	s.t.Error("storage accessed")
	return store.Stores{}
}

func (s spyTx) WithinTx(context.Context, store.UnitFn) error {
	s.t.Error("storage accessed")
	return nil
}

func TestNewServicePanicsOnNilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewService(nil, study.NewDefaultEngine(), Config{}, nil) })
	assert.Panics(t, func() { NewService(memstore.New(), nil, Config{}, nil) })
	assert.NotPanics(t, func() { NewService(memstore.New(), study.NewDefaultEngine(), Config{}, nil) })
}

func TestGetStudyListIntroducesFreshItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 10, Config{})

	entries, err := f.svc.GetStudyList(ctx, f.learner.ID, 4)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for _, e := range entries {
		require.NotEqual(t, uuid.Nil, e.MasteryRecordID)
		stats, err := f.svc.GetItemStats(ctx, f.learner.ID, e.MasteryRecordID)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Attempts)
		assert.Equal(t, e.VocabularyID, stats.VocabularyID)
		assert.NotContains(t, e.Prompt, "word")
	}

	// The same learner asking again sees the same, now materialized, records.
	again, err := f.svc.GetStudyList(ctx, f.learner.ID, 4)
	require.NoError(t, err)
	require.Len(t, again, 4)
	ids := map[uuid.UUID]bool{}
	for _, e := range entries {
		ids[e.MasteryRecordID] = true
	}
	for _, e := range again {
		assert.True(t, ids[e.MasteryRecordID], "record %s was not in the first session", e.MasteryRecordID)
	}
}

func TestGetStudyListRejectsNonPositiveLimit(t *testing.T) {
	t.Parallel()

	svc := NewService(spyTx{t: t}, study.NewDefaultEngine(), Config{}, nil)
	for _, limit := range []int{0, -1} {
		_, err := svc.GetStudyList(context.Background(), uuid.New(), limit)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	}
}

func TestGetStudyListUnknownLearner(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1, Config{})
	_, err := f.svc.GetStudyList(context.Background(), uuid.New(), 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetStudyListEmptyPool(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0, Config{})
	entries, err := f.svc.GetStudyList(context.Background(), f.learner.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckResponseCorrect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 0, Config{})
	item, err := f.svc.AddVocabulary(ctx, VocabularyInput{LearningText: "small", ReferenceText: "pequeña"})
	require.NoError(t, err)

	verdict, err := f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{
		VocabularyID: item.ID,
		Entered:      "pequeña",
	})
	require.NoError(t, err)

	assert.True(t, verdict.Correct)
	assert.Greater(t, verdict.LastChange, 0.0)
	assert.Equal(t, 1, verdict.Attempts)
	assert.Equal(t, 1, verdict.CorrectAttempts)
	assert.InDelta(t, 1.0, verdict.PercentageCorrect, 1e-9)
	assert.Equal(t, "pequeña", verdict.Expected)

	stats, err := f.svc.GetLearnerStats(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumCorrect)
	assert.Equal(t, 0, stats.NumIncorrect)
	assert.InDelta(t, 1.0, stats.TotalPercentage, 1e-9)
	assert.Equal(t, testNow, stats.UpdatedAt)

	graded := f.recorded(events.TypeGradeRecorded)
	require.Len(t, graded, 1)
	var payload events.GradeRecorded
	require.NoError(t, graded[0].UnmarshalPayload(&payload))
	assert.Equal(t, verdict.MasteryRecordID, payload.MasteryRecordID)
	assert.True(t, payload.Correct)
}

func TestCheckResponseNormalizesAnswer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 0, Config{})
	item, err := f.svc.AddVocabulary(ctx, VocabularyInput{
		LearningText:  "small",
		ReferenceText: "pequeña",
		Alternatives:  []string{"chica"},
	})
	require.NoError(t, err)

	for _, entered := range []string{"  PEQUENA ", "Chica"} {
		verdict, err := f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{VocabularyID: item.ID, Entered: entered})
		require.NoError(t, err)
		assert.True(t, verdict.Correct, entered)
	}

	verdict, err := f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{VocabularyID: item.ID, Entered: "grande"})
	require.NoError(t, err)
	assert.False(t, verdict.Correct)
	assert.Less(t, verdict.LastChange, 0.0)
	assert.Equal(t, 3, verdict.Attempts)
}

func TestCheckResponsePromotesOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 1, Config{AllowDemotion: true})
	item := f.items[0]

	var verdict *Verdict
	for i := 0; i < 5; i++ {
		var err error
		verdict, err = f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{VocabularyID: item.ID, Entered: "word0"})
		require.NoError(t, err)
		assert.Equal(t, i == 4, verdict.Promoted, "attempt %d", i+1)
	}
	assert.True(t, verdict.WellKnown)
	assert.Equal(t, 5, verdict.Attempts)

	stats, err := f.svc.GetLearnerStats(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumKnown)

	// Well-known items leave the rotation.
	entries, err := f.svc.GetStudyList(ctx, f.learner.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A demoted item that graduates again does not count twice.
	_, err = f.svc.DemoteItem(ctx, f.learner.ID, verdict.MasteryRecordID)
	require.NoError(t, err)
	verdict, err = f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{
		VocabularyID:    item.ID,
		MasteryRecordID: &verdict.MasteryRecordID,
		Entered:         "word0",
	})
	require.NoError(t, err)
	assert.True(t, verdict.Promoted)

	stats, err = f.svc.GetLearnerStats(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumKnown)
	assert.Equal(t, 6, stats.NumCorrect)
}

func TestCheckResponseUngradable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 0, Config{})
	item, err := f.svc.AddVocabulary(ctx, VocabularyInput{LearningText: "el gato"})
	require.NoError(t, err)

	before, err := f.svc.GetLearnerStats(ctx, f.learner.ID)
	require.NoError(t, err)

	_, err = f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{VocabularyID: item.ID, Entered: "the cat"})
	assert.ErrorIs(t, err, domain.ErrUngradableItem)

	after, err := f.svc.GetLearnerStats(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	pool, err := f.db.Stores().Mastery.LoadCandidatePool(ctx, f.learner.ID, false)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Nil(t, pool[0].Record)

	assert.Empty(t, f.recorded(events.TypeGradeRecorded))
	requested := f.recorded(events.TypeTranslationRequested)
	require.Len(t, requested, 1)
	var payload events.TranslationRequested
	require.NoError(t, requested[0].UnmarshalPayload(&payload))
	assert.Equal(t, item.ID, payload.VocabularyID)
	assert.Equal(t, "el gato", payload.LearningText)

	// After the back-fill the item can be graded.
	require.NoError(t, f.svc.SetReferenceText(ctx, item.ID, "the cat"))
	verdict, err := f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{VocabularyID: item.ID, Entered: "the cat"})
	require.NoError(t, err)
	assert.True(t, verdict.Correct)
}

func TestCheckResponseRecordOwnership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 2, Config{})

	first, err := f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{VocabularyID: f.items[0].ID, Entered: "word0"})
	require.NoError(t, err)

	other, err := f.svc.CreateLearner(ctx, "other-"+uuid.NewString()[:8], "", 0, 0)
	require.NoError(t, err)

	tests := []struct {
		name      string
		learnerID uuid.UUID
		sub       ResponseSubmission
		wantErr   error
	}{
		{
			name:      "other learner's record",
			learnerID: other.ID,
			sub:       ResponseSubmission{VocabularyID: f.items[0].ID, MasteryRecordID: &first.MasteryRecordID, Entered: "word0"},
			wantErr:   domain.ErrNotFound,
		},
		{
			name:      "record for another item",
			learnerID: f.learner.ID,
			sub:       ResponseSubmission{VocabularyID: f.items[1].ID, MasteryRecordID: &first.MasteryRecordID, Entered: "word1"},
			wantErr:   domain.ErrInvalidArgument,
		},
		{
			name:      "unknown item",
			learnerID: f.learner.ID,
			sub:       ResponseSubmission{VocabularyID: uuid.New(), Entered: "x"},
			wantErr:   domain.ErrNotFound,
		},
		{
			name:      "missing item id",
			learnerID: f.learner.ID,
			sub:       ResponseSubmission{Entered: "x"},
			wantErr:   domain.ErrInvalidArgument,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CheckResponse(ctx, tc.learnerID, tc.sub)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	stats, err := f.svc.GetItemStats(ctx, f.learner.ID, first.MasteryRecordID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Attempts)

	_, err = f.svc.GetItemStats(ctx, other.ID, first.MasteryRecordID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckResponseConcurrentGradersLoseNoUpdates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 2, Config{})
	const graders = 20

	var wg sync.WaitGroup
	errs := make(chan error, graders)
	for i := 0; i < graders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := f.items[i%2]
			entered := "wrong"
			if i%4 < 2 {
				entered = fmt.Sprintf("word%d", i%2)
			}
			_, err := f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{VocabularyID: item.ID, Entered: entered})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stats, err := f.svc.GetLearnerStats(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, graders, stats.NumCorrect+stats.NumIncorrect)
	assert.Equal(t, graders/2, stats.NumCorrect)
	assert.InDelta(t, 0.5, stats.TotalPercentage, 1e-9)

	pool, err := f.db.Stores().Mastery.LoadCandidatePool(ctx, f.learner.ID, false)
	require.NoError(t, err)
	total := 0
	for _, c := range pool {
		require.NotNil(t, c.Record)
		total += c.Record.Attempts
		assert.LessOrEqual(t, c.Record.CorrectAttempts, c.Record.Attempts)
	}
	assert.Equal(t, graders, total)
}

func TestDemoteItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, 1, Config{})
		_, err := f.svc.DemoteItem(ctx, f.learner.ID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrDemotionDisabled)
	})

	t.Run("learning record", func(t *testing.T) {
		f := newFixture(t, 1, Config{AllowDemotion: true})
		v, err := f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{VocabularyID: f.items[0].ID, Entered: "word0"})
		require.NoError(t, err)
		_, err = f.svc.DemoteItem(ctx, f.learner.ID, v.MasteryRecordID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("unknown record", func(t *testing.T) {
		f := newFixture(t, 1, Config{AllowDemotion: true})
		_, err := f.svc.DemoteItem(ctx, f.learner.ID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUpdateNotes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 1, Config{})

	entries, err := f.svc.GetStudyList(ctx, f.learner.ID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	stats, err := f.svc.UpdateNotes(ctx, f.learner.ID, entries[0].MasteryRecordID, "feminine")
	require.NoError(t, err)
	assert.Equal(t, "feminine", stats.Notes)

	entries, err = f.svc.GetStudyList(ctx, f.learner.ID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "feminine", entries[0].Notes)

	_, err = f.svc.UpdateNotes(ctx, uuid.New(), entries[0].MasteryRecordID, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatsReadsAreIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 1, Config{})
	v, err := f.svc.CheckResponse(ctx, f.learner.ID, ResponseSubmission{VocabularyID: f.items[0].ID, Entered: "nope"})
	require.NoError(t, err)

	first, err := f.svc.GetItemStats(ctx, f.learner.ID, v.MasteryRecordID)
	require.NoError(t, err)
	second, err := f.svc.GetItemStats(ctx, f.learner.ID, v.MasteryRecordID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = f.svc.GetLearnerStats(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminOperations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t, 0, Config{})

	got, err := f.svc.LearnerByCode(ctx, f.learner.Code)
	require.NoError(t, err)
	assert.Equal(t, f.learner.ID, got.ID)

	_, err = f.svc.LearnerByCode(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.svc.CreateLearner(ctx, f.learner.Code, "", 0, 0)
	assert.ErrorIs(t, err, store.ErrLearnerCodeExists)

	_, err = f.svc.CreateLearner(ctx, "bad-rotation", "", -1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.svc.AddVocabulary(ctx, VocabularyInput{LearningText: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.ErrorIs(t, f.svc.SetReferenceText(ctx, uuid.New(), ""), domain.ErrInvalidArgument)
	assert.ErrorIs(t, f.svc.SetReferenceText(ctx, uuid.New(), "x"), domain.ErrNotFound)
}
