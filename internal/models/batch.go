package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Batch is a class section with its enrolled student roster. BatchCode is
// the human-facing identifier (e.g. "BATCH2024"); StudentIDs holds the hex
// object ids of enrolled students.
type Batch struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	BatchCode  string             `bson:"batch_code" json:"batch_code"`
	Name       string             `bson:"name" json:"name"`
	Branch     string             `bson:"branch,omitempty" json:"branch,omitempty"`
	Year       string             `bson:"year,omitempty" json:"year,omitempty"`
	StudentIDs []string           `bson:"student_ids" json:"student_ids"`
}

// HasStudent reports whether studentID is enrolled in the batch.
func (b *Batch) HasStudent(studentID string) bool {
	for _, sid := range b.StudentIDs {
		if sid == studentID {
			return true
		}
	}
	return false
}
