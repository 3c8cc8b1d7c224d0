package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	StartDate   time.Time            `bson:"startDate" json:"startDate"`
	EndDate     time.Time            `bson:"endDate" json:"endDate"`
	Image       string               `bson:"image" json:"image"`
	Admin       []primitive.ObjectID `bson:"admin" json:"admin"`
	Active      bool                 `bson:"active" json:"active"`
}

// HasAdmin reports whether the given user belongs to the project admin set.
func (p *Project) HasAdmin(userID primitive.ObjectID) bool {
	for _, id := range p.Admin {
		if id == userID {
			return true
		}
	}
	return false
}
