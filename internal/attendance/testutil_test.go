package attendance

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/naveen-b26/ams-back/internal/models"
)

// memStore is an in-memory LedgerStore with the same semantics as the
// Mongo implementation, including the all-zero day initialization and the
// pre-image mark result.
type memStore struct {
	mu      sync.Mutex
	ledgers map[string]*models.Ledger
}

func newMemStore() *memStore {
	return &memStore{ledgers: make(map[string]*models.Ledger)}
}

func pairKey(studentID, batchID string) string {
	return studentID + "|" + batchID
}

func (s *memStore) GetOrCreate(_ context.Context, studentID, batchID string) (*models.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ledger, ok := s.ledgers[pairKey(studentID, batchID)]; ok {
		return ledger, nil
	}
	ledger := &models.Ledger{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		BatchID:   batchID,
		Attend:    map[string][]int{},
	}
	s.ledgers[pairKey(studentID, batchID)] = ledger
	return ledger, nil
}

func (s *memStore) MarkPeriod(_ context.Context, studentID, batchID, date string, periodIndex int, present bool) (MarkResult, error) {
	if periodIndex < 0 || periodIndex >= models.PeriodsPerDay {
		return MarkResult{}, validationf("Invalid period number.")
	}
	if _, err := ParseDate(date); err != nil {
		return MarkResult{}, validationf("Invalid date format.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[pairKey(studentID, batchID)]
	if !ok {
		return MarkResult{}, ErrLedgerNotFound
	}

	value := 0
	if present {
		value = 1
	}
	previous := 0
	if day, ok := ledger.Day(date); ok {
		previous = day[periodIndex]
	}
	if day, ok := ledger.Attend[date]; !ok || len(day) != models.PeriodsPerDay {
		ledger.Attend[date] = emptyDay()
	}
	ledger.Attend[date][periodIndex] = value
	return MarkResult{Changed: previous != value, Previous: previous}, nil
}

func (s *memStore) Find(_ context.Context, studentID, batchID string) (*models.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[pairKey(studentID, batchID)]
	if !ok {
		return nil, ErrLedgerNotFound
	}
	return ledger, nil
}

func (s *memStore) FindByStudent(_ context.Context, studentID string) (*models.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ledger := range s.ledgers {
		if ledger.StudentID == studentID {
			return ledger, nil
		}
	}
	return nil, ErrLedgerNotFound
}

func (s *memStore) ForBatch(_ context.Context, batchID string) ([]models.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Ledger
	for _, ledger := range s.ledgers {
		if ledger.BatchID == batchID {
			out = append(out, *ledger)
		}
	}
	return out, nil
}

func (s *memStore) SetPercentage(_ context.Context, studentID, batchID, percentage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[pairKey(studentID, batchID)]
	if !ok {
		return ErrLedgerNotFound
	}
	ledger.Percentage = percentage
	return nil
}

// seedDay plants a raw day vector, bypassing MarkPeriod, for shaping
// malformed or pre-existing state.
func (s *memStore) seedDay(studentID, batchID, date string, day []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(studentID, batchID)
	ledger, ok := s.ledgers[key]
	if !ok {
		ledger = &models.Ledger{
			ID:        primitive.NewObjectID(),
			StudentID: studentID,
			BatchID:   batchID,
			Attend:    map[string][]int{},
		}
		s.ledgers[key] = ledger
	}
	ledger.Attend[date] = day
}

// fakeRoster serves canned batches and students.
type fakeRoster struct {
	batches  map[string]*models.Batch
	students map[string]*models.Student
	byCode   map[string]*models.Student
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{
		batches:  make(map[string]*models.Batch),
		students: make(map[string]*models.Student),
		byCode:   make(map[string]*models.Student),
	}
}

func (r *fakeRoster) addBatch(name string, studentIDs ...string) *models.Batch {
	b := &models.Batch{
		ID:         primitive.NewObjectID(),
		BatchCode:  name,
		Name:       name,
		StudentIDs: studentIDs,
	}
	r.batches[b.ID.Hex()] = b
	return b
}

func (r *fakeRoster) addStudent(code, name string) *models.Student {
	s := &models.Student{ID: primitive.NewObjectID(), StudentCode: code, Name: name}
	r.students[s.ID.Hex()] = s
	r.byCode[code] = s
	return s
}

func (r *fakeRoster) Batch(_ context.Context, batchID string) (*models.Batch, error) {
	return r.batches[batchID], nil
}

func (r *fakeRoster) Students(_ context.Context, studentIDs []string) ([]models.Student, error) {
	var out []models.Student
	for _, sid := range studentIDs {
		if s, ok := r.students[sid]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRoster) StudentByCode(_ context.Context, code string) (*models.Student, error) {
	return r.byCode[code], nil
}

// fixedClock pins "now" for deterministic dates.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// recordingFeed captures published events.
type recordingFeed struct {
	mu     sync.Mutex
	events []string
}

func (f *recordingFeed) Publish(event string, _ map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *recordingFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func mustDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}
