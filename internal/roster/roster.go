// Package roster wraps the batch and student collections owned by the
// wider institution backend. The attendance core only ever reads them.
package roster

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/naveen-b26/ams-back/internal/models"
)

type MongoRoster struct {
	batches  *mongo.Collection
	students *mongo.Collection
}

func NewMongoRoster(db *mongo.Database) *MongoRoster {
	return &MongoRoster{
		batches:  db.Collection("batches"),
		students: db.Collection("students"),
	}
}

// Batch looks a batch up by hex id. A malformed or unknown id returns
// (nil, nil); callers decide whether that is a 404.
func (r *MongoRoster) Batch(ctx context.Context, batchID string) (*models.Batch, error) {
	oid, err := primitive.ObjectIDFromHex(batchID)
	if err != nil {
		return nil, nil
	}

	var batch models.Batch
	if err := r.batches.FindOne(ctx, bson.M{"_id": oid}).Decode(&batch); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find batch: %w", err)
	}
	return &batch, nil
}

// Students resolves roster details for the given hex ids, preserving the
// input order. Malformed and unknown ids are omitted.
func (r *MongoRoster) Students(ctx context.Context, studentIDs []string) ([]models.Student, error) {
	oids := make([]primitive.ObjectID, 0, len(studentIDs))
	for _, sid := range studentIDs {
		if oid, err := primitive.ObjectIDFromHex(sid); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}

	cursor, err := r.students.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}
	defer cursor.Close(ctx)

	var found []models.Student
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}

	byID := make(map[string]models.Student, len(found))
	for _, s := range found {
		byID[s.ID.Hex()] = s
	}

	ordered := make([]models.Student, 0, len(found))
	for _, sid := range studentIDs {
		if s, ok := byID[sid]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

// StudentByCode looks a student up by institution code, returning
// (nil, nil) when no such student exists.
func (r *MongoRoster) StudentByCode(ctx context.Context, code string) (*models.Student, error) {
	var student models.Student
	if err := r.students.FindOne(ctx, bson.M{"student_id": code}).Decode(&student); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find student by code: %w", err)
	}
	return &student, nil
}
