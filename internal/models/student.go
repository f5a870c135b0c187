package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Student carries the roster details the attendance core needs. StudentCode
// is the institution-issued identifier (roll number), distinct from the
// document id other collections reference.
type Student struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	StudentCode string             `bson:"student_id" json:"student_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
}
