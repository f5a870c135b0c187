package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PeriodsPerDay is the fixed number of class periods in a day vector.
const PeriodsPerDay = 6

// Ledger is the per-(student, batch) attendance document. Attend maps an
// ISO date (YYYY-MM-DD) to a vector of exactly PeriodsPerDay entries,
// 0 = absent, 1 = present. Percentage is a denormalized snapshot written
// by the aggregator and may be stale between recomputations.
type Ledger struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	StudentID  string             `bson:"student_id" json:"student_id"`
	BatchID    string             `bson:"batch_id" json:"batch_id"`
	Attend     map[string][]int   `bson:"attend" json:"attend"`
	Percentage string             `bson:"percentage,omitempty" json:"percentage,omitempty"`
}

// Day returns the stored period vector for date. ok is false when the date
// is unmarked or the stored vector is not exactly PeriodsPerDay entries
// long; a malformed day reads as "not marked" rather than failing.
func (l *Ledger) Day(date string) ([]int, bool) {
	if l == nil || l.Attend == nil {
		return nil, false
	}
	day, ok := l.Attend[date]
	if !ok || len(day) != PeriodsPerDay {
		return nil, false
	}
	return day, true
}

// PresentAny reports whether any period on date is marked present.
func (l *Ledger) PresentAny(date string) bool {
	day, ok := l.Day(date)
	if !ok {
		return false
	}
	for _, v := range day {
		if v == 1 {
			return true
		}
	}
	return false
}
