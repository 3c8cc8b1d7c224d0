package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	DueDate     time.Time           `bson:"dueDate" json:"dueDate"`
	Completed   bool                `bson:"completed" json:"completed"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Project     primitive.ObjectID  `bson:"project" json:"project"`
}
