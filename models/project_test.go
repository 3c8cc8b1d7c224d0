package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHasAdmin(t *testing.T) {
	owner := primitive.NewObjectID()
	second := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	project := Project{Admin: []primitive.ObjectID{owner, second}}

	if !project.HasAdmin(owner) {
		t.Error("owner not recognized as admin")
	}
	if !project.HasAdmin(second) {
		t.Error("second admin not recognized")
	}
	if project.HasAdmin(outsider) {
		t.Error("outsider recognized as admin")
	}

	empty := Project{}
	if empty.HasAdmin(owner) {
		t.Error("empty admin set matched a user")
	}
}
