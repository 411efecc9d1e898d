package study

import (
	"sort"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
)

// Candidate is one entry of a learner's candidate pool. Record is nil for a
// vocabulary item the learner has never been shown.
type Candidate struct {
	Item   *domain.VocabularyItem
	Record *domain.MasteryRecord
}

// Fresh reports whether the candidate has no mastery record yet.
func (c Candidate) Fresh() bool {
	return c.Record == nil
}

// SessionPlan is the scheduler's decision for one session request.
type SessionPlan struct {
	// Entries is the ordered session. Fresh entries have a nil Record until
	// the caller materializes them.
	Entries []Candidate

	// Introduce lists every fresh item that must get a mastery record,
	// including ones that did not fit in the batch but are needed to
	// satisfy the learner's minimum pool size.
	Introduce []*domain.VocabularyItem
}

// SessionEntry is the presentable form of a scheduled item. It never carries
// the reference translation.
type SessionEntry struct {
	VocabularyID    uuid.UUID `json:"vocab_id"`
	MasteryRecordID uuid.UUID `json:"mastery_record_id"`
	Prompt          string    `json:"prompt"`
	Hint            string    `json:"hint,omitempty"`
	PartOfSpeech    string    `json:"part_of_speech,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// NewSessionEntry builds the prompt for a scheduled item.
func NewSessionEntry(item *domain.VocabularyItem, record *domain.MasteryRecord) SessionEntry {
	entry := SessionEntry{
		VocabularyID: item.ID,
		Prompt:       item.LearningText,
		Hint:         item.Hint,
		PartOfSpeech: item.PartOfSpeech,
	}
	if record != nil {
		entry.MasteryRecordID = record.ID
		entry.Notes = record.UserNotes
	}
	return entry
}

// planSession chooses the next items to present to a learner.
//
// Selection:
//   - Well-known records and items without a reference translation are skipped
//   - active is the number of learning records the learner already has
//   - Fresh items are introduced to reach both the learner's minimum pool size
//     and the batch size, never pushing active above MaxRotationSize
//   - Fresh items are introduced shortest term first, then oldest first
//
// Ordering: lowest accuracy first, then never-tested, then least recently
// tested, then record creation order.
//
// The session holds min(batchSize, candidates) entries. A short or empty
// session is not an error.
func planSession(learner *domain.LearnerProfile, pool []Candidate, batchSize int) (*SessionPlan, error) {
	if batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}
	if learner == nil {
		return nil, ErrNilLearner
	}

	var (
		active   int
		existing []Candidate
		fresh    []Candidate
	)

	for _, c := range pool {
		if c.Item == nil {
			continue
		}
		if c.Record != nil {
			if c.Record.WellKnown() {
				continue
			}
			active++
			if c.Item.Gradable() {
				existing = append(existing, c)
			}
			continue
		}
		if c.Item.Gradable() {
			fresh = append(fresh, c)
		}
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		a, b := fresh[i].Item, fresh[j].Item
		if a.TermCount != b.TermCount {
			return a.TermCount < b.TermCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	introduce := freshQuota(learner, active, len(existing), batchSize, len(fresh))

	plan := &SessionPlan{
		Introduce: make([]*domain.VocabularyItem, 0, introduce),
	}
	for _, c := range fresh[:introduce] {
		plan.Introduce = append(plan.Introduce, c.Item)
	}

	sort.SliceStable(existing, func(i, j int) bool {
		return existing[i].Record.CreatedAt.Before(existing[j].Record.CreatedAt)
	})
	candidates := append(existing, fresh[:introduce]...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return weaker(candidates[i], candidates[j])
	})

	if len(candidates) > batchSize {
		candidates = candidates[:batchSize]
	}
	plan.Entries = candidates

	return plan, nil
}

// freshQuota returns how many fresh items to introduce.
func freshQuota(learner *domain.LearnerProfile, active, existing, batchSize, available int) int {
	want := learner.MinPoolSize - active
	if fill := batchSize - existing; fill > want {
		want = fill
	}
	if room := learner.MaxRotationSize - active; room < want {
		want = room
	}
	if available < want {
		want = available
	}
	if want < 0 {
		return 0
	}
	return want
}

// weaker orders candidates so the least known, least recently tested come first.
// Fresh candidates count as 0% accuracy and never tested.
func weaker(a, b Candidate) bool {
	pa, pb := accuracy(a), accuracy(b)
	if pa != pb {
		return pa < pb
	}

	ta, tb := a.Record != nil && a.Record.Tested(), b.Record != nil && b.Record.Tested()
	if ta != tb {
		return !ta
	}
	if ta && !a.Record.LastTestedAt.Equal(*b.Record.LastTestedAt) {
		return a.Record.LastTestedAt.Before(*b.Record.LastTestedAt)
	}

	return false
}

func accuracy(c Candidate) float64 {
	if c.Record == nil {
		return 0
	}
	return c.Record.PercentageCorrect
}
