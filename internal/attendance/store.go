package attendance

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/naveen-b26/ams-back/internal/models"
)

// MarkResult reports the outcome of a MarkPeriod call. Previous is the
// stored value before the write (0 for a freshly initialized day); Changed
// is false when the write was an idempotent no-op.
type MarkResult struct {
	Changed  bool
	Previous int
}

// LedgerStore owns persistence of attendance ledgers. The ledger document
// is the unit of mutual exclusion: implementations must make GetOrCreate
// and MarkPeriod safe under concurrent calls for the same pair, using
// field-path atomic updates rather than whole-document overwrites.
type LedgerStore interface {
	// GetOrCreate returns the ledger for the pair, creating an empty one
	// if absent. At most one ledger ever exists per pair.
	GetOrCreate(ctx context.Context, studentID, batchID string) (*models.Ledger, error)

	// MarkPeriod sets the status of one period on one date, initializing
	// the day's vector to all-zero first if the date is new. periodIndex
	// is 0-based. The ledger must already exist.
	MarkPeriod(ctx context.Context, studentID, batchID, date string, periodIndex int, present bool) (MarkResult, error)

	// Find returns the ledger for the pair or ErrLedgerNotFound.
	Find(ctx context.Context, studentID, batchID string) (*models.Ledger, error)

	// FindByStudent returns any ledger for the student or ErrLedgerNotFound.
	FindByStudent(ctx context.Context, studentID string) (*models.Ledger, error)

	// ForBatch returns every ledger belonging to the batch.
	ForBatch(ctx context.Context, batchID string) ([]models.Ledger, error)

	// SetPercentage writes the cached percentage snapshot for the pair.
	SetPercentage(ctx context.Context, studentID, batchID, percentage string) error
}

// MongoLedgerStore implements LedgerStore on a MongoDB collection.
type MongoLedgerStore struct {
	col *mongo.Collection
}

func NewMongoLedgerStore(db *mongo.Database) *MongoLedgerStore {
	return &MongoLedgerStore{col: db.Collection("attendance")}
}

func pairFilter(studentID, batchID string) bson.M {
	return bson.M{"student_id": studentID, "batch_id": batchID}
}

func (s *MongoLedgerStore) GetOrCreate(ctx context.Context, studentID, batchID string) (*models.Ledger, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	update := bson.M{"$setOnInsert": bson.M{
		"student_id": studentID,
		"batch_id":   batchID,
		"attend":     bson.M{},
	}}

	var ledger models.Ledger
	err := s.col.FindOneAndUpdate(ctx, pairFilter(studentID, batchID), update, opts).Decode(&ledger)
	if err != nil {
		return nil, fmt.Errorf("get or create ledger: %w", err)
	}
	return &ledger, nil
}

func (s *MongoLedgerStore) MarkPeriod(ctx context.Context, studentID, batchID, date string, periodIndex int, present bool) (MarkResult, error) {
	if periodIndex < 0 || periodIndex >= models.PeriodsPerDay {
		return MarkResult{}, validationf("Invalid period number.")
	}
	if _, err := ParseDate(date); err != nil {
		return MarkResult{}, validationf("Invalid date format.")
	}

	filter := pairFilter(studentID, batchID)

	// Initialize the day's vector if this date is new. The $exists guard
	// makes the initialization race-safe: only one of any concurrent
	// callers can match, so the vector is created exactly once and always
	// with the full six slots.
	dayPath := "attend." + date
	initFilter := bson.M{
		"student_id": studentID,
		"batch_id":   batchID,
		dayPath:      bson.M{"$exists": false},
	}
	if _, err := s.col.UpdateOne(ctx, initFilter, bson.M{"$set": bson.M{dayPath: emptyDay()}}); err != nil {
		return MarkResult{}, fmt.Errorf("initialize day vector: %w", err)
	}

	value := 0
	if present {
		value = 1
	}

	// Field-path $set on the single array slot; concurrent marks on other
	// periods of the same date touch different paths and cannot clobber
	// this one. The pre-image tells the caller what was stored before.
	slotPath := fmt.Sprintf("%s.%d", dayPath, periodIndex)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.Ledger
	err := s.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{slotPath: value}}, opts).Decode(&before)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return MarkResult{}, ErrLedgerNotFound
		}
		return MarkResult{}, fmt.Errorf("mark period: %w", err)
	}

	previous := 0
	if day, ok := before.Day(date); ok {
		previous = day[periodIndex]
	}
	return MarkResult{Changed: previous != value, Previous: previous}, nil
}

func (s *MongoLedgerStore) Find(ctx context.Context, studentID, batchID string) (*models.Ledger, error) {
	var ledger models.Ledger
	err := s.col.FindOne(ctx, pairFilter(studentID, batchID)).Decode(&ledger)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("find ledger: %w", err)
	}
	return &ledger, nil
}

func (s *MongoLedgerStore) FindByStudent(ctx context.Context, studentID string) (*models.Ledger, error) {
	var ledger models.Ledger
	err := s.col.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&ledger)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("find ledger by student: %w", err)
	}
	return &ledger, nil
}

func (s *MongoLedgerStore) ForBatch(ctx context.Context, batchID string) ([]models.Ledger, error) {
	cursor, err := s.col.Find(ctx, bson.M{"batch_id": batchID})
	if err != nil {
		return nil, fmt.Errorf("ledgers for batch: %w", err)
	}
	defer cursor.Close(ctx)

	var ledgers []models.Ledger
	if err := cursor.All(ctx, &ledgers); err != nil {
		return nil, fmt.Errorf("decode ledgers: %w", err)
	}
	return ledgers, nil
}

func (s *MongoLedgerStore) SetPercentage(ctx context.Context, studentID, batchID, percentage string) error {
	res, err := s.col.UpdateOne(ctx, pairFilter(studentID, batchID), bson.M{
		"$set": bson.M{"percentage": percentage},
	})
	if err != nil {
		return fmt.Errorf("set percentage: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrLedgerNotFound
	}
	return nil
}
