package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/sethshivam11/project-store-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func projectFixture(project models.Project, updates *[]bson.M) *ProjectService {
	projects := &fakeCollection{
		findOne: func(interface{}) *mongo.SingleResult {
			return singleResult(project)
		},
		updateOne: func(_, update interface{}) (*mongo.UpdateResult, error) {
			if updates != nil {
				*updates = append(*updates, update.(bson.M))
			}
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	return NewProjectService(projects, nil)
}

func TestMarkActiveRepeatAllowed(t *testing.T) {
	admin := primitive.NewObjectID()
	project := models.Project{ID: primitive.NewObjectID(), Admin: []primitive.ObjectID{admin}, Active: true}

	// Re-activating an active project is not an error; the write just lands
	// the same value again.
	var updates []bson.M
	svc := projectFixture(project, &updates)

	if err := svc.MarkActive(context.Background(), admin, project.ID.Hex()); err != nil {
		t.Fatalf("MarkActive: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("recorded %d updates, want 1", len(updates))
	}
	set := updates[0]["$set"].(bson.M)
	if set["active"] != true {
		t.Errorf("update active = %v, want true", set["active"])
	}
}

func TestProjectMutationRequiresAdmin(t *testing.T) {
	project := models.Project{ID: primitive.NewObjectID(), Admin: []primitive.ObjectID{primitive.NewObjectID()}}

	svc := projectFixture(project, nil)

	err := svc.MarkInactive(context.Background(), primitive.NewObjectID(), project.ID.Hex())
	wantApiError(t, err, http.StatusUnauthorized, "Unauthorized access")
}
