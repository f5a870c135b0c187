package attendance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/naveen-b26/ams-back/internal/models"
	"github.com/naveen-b26/ams-back/internal/token"
)

// Roster resolves batch and student identity. Batches and students are
// owned elsewhere; the attendance core only reads them.
type Roster interface {
	// Batch returns the batch by hex id, or nil when it does not exist.
	Batch(ctx context.Context, batchID string) (*models.Batch, error)

	// Students resolves roster details for the given hex ids, preserving
	// input order; unknown ids are omitted.
	Students(ctx context.Context, studentIDs []string) ([]models.Student, error)

	// StudentByCode returns the student with the given institution code,
	// or nil when no such student exists.
	StudentByCode(ctx context.Context, code string) (*models.Student, error)
}

// TokenVerifier validates a raw check-in credential.
type TokenVerifier interface {
	Verify(raw string, now time.Time) (*token.CheckInClaims, error)
}

// Feed receives attendance events as they are persisted, for live
// dashboards. Implementations must be safe for concurrent use.
type Feed interface {
	Publish(event string, data map[string]interface{})
}

// Service is the attendance core: check-in processing, manual entry,
// queries and aggregation, all over one LedgerStore.
type Service struct {
	store  LedgerStore
	roster Roster
	tokens TokenVerifier
	clock  Clock
	feed   Feed
	log    *zap.Logger
}

func NewService(store LedgerStore, roster Roster, tokens TokenVerifier, clock Clock, feed Feed, log *zap.Logger) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, roster: roster, tokens: tokens, clock: clock, feed: feed, log: log}
}

func (s *Service) publish(event string, data map[string]interface{}) {
	if s.feed != nil {
		s.feed.Publish(event, data)
	}
}
