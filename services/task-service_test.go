package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/sethshivam11/project-store-backend/models"
	"github.com/sethshivam11/project-store-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func taskFixture(task models.Task, project models.Project, updates *[]bson.M) *TaskService {
	tasks := &fakeCollection{
		findOne: func(interface{}) *mongo.SingleResult {
			return singleResult(task)
		},
		updateOne: func(_, update interface{}) (*mongo.UpdateResult, error) {
			if updates != nil {
				*updates = append(*updates, update.(bson.M))
			}
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	projects := &fakeCollection{
		findOne: func(interface{}) *mongo.SingleResult {
			return singleResult(project)
		},
	}
	return NewTaskService(tasks, projects)
}

func wantApiError(t *testing.T, err error, status int, message string) {
	t.Helper()
	if err == nil {
		t.Fatal("error = nil")
	}
	apiErr, ok := err.(*utils.ApiError)
	if !ok {
		t.Fatalf("error = %v, want *utils.ApiError", err)
	}
	if apiErr.Status != status {
		t.Errorf("status = %d, want %d", apiErr.Status, status)
	}
	if apiErr.Message != message {
		t.Errorf("message = %q, want %q", apiErr.Message, message)
	}
}

func TestAssignTaskRejectsWhenHeldByCaller(t *testing.T) {
	admin := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	task := models.Task{ID: primitive.NewObjectID(), Project: projectID, AssignedTo: &admin}
	project := models.Project{ID: projectID, Admin: []primitive.ObjectID{admin}}

	svc := taskFixture(task, project, nil)

	_, err := svc.AssignTask(context.Background(), admin, task.ID.Hex(), primitive.NewObjectID().Hex())
	wantApiError(t, err, http.StatusBadRequest, "This task is already assigned to the user")
}

func TestAssignTaskReassignsWhenHeldByAnotherUser(t *testing.T) {
	admin := primitive.NewObjectID()
	holder := primitive.NewObjectID()
	target := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	task := models.Task{ID: primitive.NewObjectID(), Project: projectID, AssignedTo: &holder}
	project := models.Project{ID: projectID, Admin: []primitive.ObjectID{admin}}

	// The guard compares against the caller, so a task held by someone else
	// is handed over without complaint.
	var updates []bson.M
	svc := taskFixture(task, project, &updates)

	updated, err := svc.AssignTask(context.Background(), admin, task.ID.Hex(), target.Hex())
	if err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != target {
		t.Errorf("assignedTo = %v, want %s", updated.AssignedTo, target.Hex())
	}
	if len(updates) != 1 {
		t.Fatalf("recorded %d updates, want 1", len(updates))
	}
	set := updates[0]["$set"].(bson.M)
	if set["assignedTo"] != target {
		t.Errorf("update assignedTo = %v, want %s", set["assignedTo"], target.Hex())
	}
}

func TestUnassignTaskGuards(t *testing.T) {
	admin := primitive.NewObjectID()
	holder := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	project := models.Project{ID: projectID, Admin: []primitive.ObjectID{admin}}

	unheld := models.Task{ID: primitive.NewObjectID(), Project: projectID}
	svc := taskFixture(unheld, project, nil)
	_, err := svc.UnassignTask(context.Background(), admin, unheld.ID.Hex())
	wantApiError(t, err, http.StatusBadRequest, "This task is already unassigned")

	// Held by another user still reads as unassigned to the caller.
	heldByOther := models.Task{ID: primitive.NewObjectID(), Project: projectID, AssignedTo: &holder}
	svc = taskFixture(heldByOther, project, nil)
	_, err = svc.UnassignTask(context.Background(), admin, heldByOther.ID.Hex())
	wantApiError(t, err, http.StatusBadRequest, "This task is already unassigned")

	heldByCaller := models.Task{ID: primitive.NewObjectID(), Project: projectID, AssignedTo: &admin}
	svc = taskFixture(heldByCaller, project, nil)
	updated, err := svc.UnassignTask(context.Background(), admin, heldByCaller.ID.Hex())
	if err != nil {
		t.Fatalf("UnassignTask: %v", err)
	}
	if updated.AssignedTo != nil {
		t.Errorf("assignedTo = %v, want nil", updated.AssignedTo)
	}
}

func TestMarkCompleteRejectsRepeat(t *testing.T) {
	admin := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	project := models.Project{ID: projectID, Admin: []primitive.ObjectID{admin}}
	task := models.Task{ID: primitive.NewObjectID(), Project: projectID, Completed: true}

	svc := taskFixture(task, project, nil)
	err := svc.MarkComplete(context.Background(), admin, task.ID.Hex())
	wantApiError(t, err, http.StatusBadRequest, "This task is already marked as complete")
}

func TestMarkIncompleteRejectsRepeat(t *testing.T) {
	admin := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	project := models.Project{ID: projectID, Admin: []primitive.ObjectID{admin}}
	task := models.Task{ID: primitive.NewObjectID(), Project: projectID, Completed: false}

	svc := taskFixture(task, project, nil)
	err := svc.MarkIncomplete(context.Background(), admin, task.ID.Hex())
	wantApiError(t, err, http.StatusBadRequest, "This task is already marked as incomplete")
}

func TestMarkCompleteTransition(t *testing.T) {
	admin := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	project := models.Project{ID: projectID, Admin: []primitive.ObjectID{admin}}
	task := models.Task{ID: primitive.NewObjectID(), Project: projectID, Completed: false}

	var updates []bson.M
	svc := taskFixture(task, project, &updates)

	if err := svc.MarkComplete(context.Background(), admin, task.ID.Hex()); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("recorded %d updates, want 1", len(updates))
	}
	set := updates[0]["$set"].(bson.M)
	if set["completed"] != true {
		t.Errorf("update completed = %v, want true", set["completed"])
	}
}

func TestTaskMutationRequiresProjectAdmin(t *testing.T) {
	caller := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	task := models.Task{ID: primitive.NewObjectID(), Project: projectID}
	project := models.Project{ID: projectID, Admin: []primitive.ObjectID{primitive.NewObjectID()}}

	svc := taskFixture(task, project, nil)

	_, err := svc.AssignTask(context.Background(), caller, task.ID.Hex(), primitive.NewObjectID().Hex())
	wantApiError(t, err, http.StatusUnauthorized, "You cannot assign tasks to this project")
}
