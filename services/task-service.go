package services

import (
	"context"
	"net/http"
	"time"

	"github.com/sethshivam11/project-store-backend/logging"
	"github.com/sethshivam11/project-store-backend/models"
	"github.com/sethshivam11/project-store-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskService struct {
	TasksCollection    Collection
	ProjectsCollection Collection
}

func NewTaskService(tasksCollection, projectsCollection Collection) *TaskService {
	return &TaskService{
		TasksCollection:    tasksCollection,
		ProjectsCollection: projectsCollection,
	}
}

// CreateTask kreira task u okviru projekta. Svaki autentifikovani korisnik
// može da kreira task; admin provera važi samo za mutacije.
func (s *TaskService) CreateTask(ctx context.Context, projectID string, title, description string, dueDate time.Time) (*models.Task, error) {
	projectObjectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, utils.NewApiError(http.StatusBadRequest, "Invalid project ID format")
	}

	// Task mora da pokazuje na postojeći projekat
	count, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"_id": projectObjectID})
	if err != nil {
		return nil, utils.NewApiError(http.StatusInternalServerError, "Task could not be created")
	}
	if count == 0 {
		return nil, utils.NewApiError(http.StatusNotFound, "Project not found")
	}

	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Completed:   false,
		Project:     projectObjectID,
	}

	if _, err := s.TasksCollection.InsertOne(ctx, task); err != nil {
		logging.Logger.Errorf("Event ID: TASK_INSERT_FAILED, Description: %v", err)
		return nil, utils.NewApiError(http.StatusInternalServerError, "Task could not be created")
	}

	return task, nil
}

func (s *TaskService) GetUserTasks(ctx context.Context, userID string) ([]models.Task, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewApiError(http.StatusBadRequest, "Invalid user ID format")
	}

	return s.findTasks(ctx, bson.M{"assignedTo": userObjectID})
}

func (s *TaskService) GetProjectTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	projectObjectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, utils.NewApiError(http.StatusBadRequest, "Invalid project ID format")
	}

	return s.findTasks(ctx, bson.M{"project": projectObjectID})
}

func (s *TaskService) findTasks(ctx context.Context, filter bson.M) ([]models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, filter)
	if err != nil {
		return nil, utils.NewApiError(http.StatusInternalServerError, "Failed to fetch tasks")
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, utils.NewApiError(http.StatusInternalServerError, "Failed to fetch tasks")
	}

	if len(tasks) == 0 {
		return nil, utils.NewApiError(http.StatusNotFound, "No tasks found")
	}

	return tasks, nil
}

// AssignTask dodeljuje task korisniku; samo admin projekta sme
func (s *TaskService) AssignTask(ctx context.Context, callerID primitive.ObjectID, taskID, userID string) (*models.Task, error) {
	task, err := s.findForProjectAdmin(ctx, callerID, taskID, "You cannot assign tasks to this project")
	if err != nil {
		return nil, err
	}

	assigneeID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewApiError(http.StatusBadRequest, "Invalid user ID format")
	}

	if task.AssignedTo != nil && *task.AssignedTo == callerID {
		return nil, utils.NewApiError(http.StatusBadRequest, "This task is already assigned to the user")
	}

	_, err = s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{"$set": bson.M{"assignedTo": assigneeID}},
	)
	if err != nil {
		return nil, utils.NewApiError(http.StatusInternalServerError, "Failed to assign task")
	}

	task.AssignedTo = &assigneeID
	return task, nil
}

func (s *TaskService) UnassignTask(ctx context.Context, callerID primitive.ObjectID, taskID string) (*models.Task, error) {
	task, err := s.findForProjectAdmin(ctx, callerID, taskID, "You cannot unassign tasks from this project")
	if err != nil {
		return nil, err
	}

	if task.AssignedTo == nil || *task.AssignedTo != callerID {
		return nil, utils.NewApiError(http.StatusBadRequest, "This task is already unassigned")
	}

	_, err = s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{"$set": bson.M{"assignedTo": nil}},
	)
	if err != nil {
		return nil, utils.NewApiError(http.StatusInternalServerError, "Failed to unassign task")
	}

	task.AssignedTo = nil
	return task, nil
}

func (s *TaskService) MarkComplete(ctx context.Context, callerID primitive.ObjectID, taskID string) error {
	return s.setCompleted(ctx, callerID, taskID, true)
}

func (s *TaskService) MarkIncomplete(ctx context.Context, callerID primitive.ObjectID, taskID string) error {
	return s.setCompleted(ctx, callerID, taskID, false)
}

func (s *TaskService) setCompleted(ctx context.Context, callerID primitive.ObjectID, taskID string, completed bool) error {
	task, err := s.findForProjectAdmin(ctx, callerID, taskID, "You cannot mark tasks in this project")
	if err != nil {
		return err
	}

	// Ponovljeni prelaz u isto stanje je greška
	if task.Completed == completed {
		if completed {
			return utils.NewApiError(http.StatusBadRequest, "This task is already marked as complete")
		}
		return utils.NewApiError(http.StatusBadRequest, "This task is already marked as incomplete")
	}

	_, err = s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{"$set": bson.M{"completed": completed}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to update task")
	}

	return nil
}

func (s *TaskService) UpdateTask(ctx context.Context, callerID primitive.ObjectID, taskID string, title, description string, dueDate *time.Time) (*models.Task, error) {
	task, err := s.findForProjectAdmin(ctx, callerID, taskID, "You cannot update tasks in this project")
	if err != nil {
		return nil, err
	}

	update := bson.M{}
	if title != "" {
		update["title"] = title
		task.Title = title
	}
	if description != "" {
		update["description"] = description
		task.Description = description
	}
	if dueDate != nil {
		update["dueDate"] = *dueDate
		task.DueDate = *dueDate
	}

	if len(update) > 0 {
		_, err = s.TasksCollection.UpdateOne(ctx, bson.M{"_id": task.ID}, bson.M{"$set": update})
		if err != nil {
			return nil, utils.NewApiError(http.StatusInternalServerError, "Failed to update task")
		}
	}

	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, callerID primitive.ObjectID, taskID string) error {
	task, err := s.findForProjectAdmin(ctx, callerID, taskID, "You cannot delete tasks in this project")
	if err != nil {
		return err
	}

	if _, err := s.TasksCollection.DeleteOne(ctx, bson.M{"_id": task.ID}); err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to delete task")
	}

	return nil
}

// findForProjectAdmin učitava task i proverava da je pozivalac admin
// roditeljskog projekta; to je jedina autorizaciona kapija za mutacije taska
func (s *TaskService) findForProjectAdmin(ctx context.Context, callerID primitive.ObjectID, taskID, denyMessage string) (*models.Task, error) {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, utils.NewApiError(http.StatusBadRequest, "Invalid task ID format")
	}

	var task models.Task
	err = s.TasksCollection.FindOne(ctx, bson.M{"_id": taskObjectID}).Decode(&task)
	if err != nil {
		return nil, utils.NewApiError(http.StatusNotFound, "Task not found")
	}

	var project models.Project
	err = s.ProjectsCollection.FindOne(ctx, bson.M{"_id": task.Project}).Decode(&project)
	if err != nil {
		return nil, utils.NewApiError(http.StatusNotFound, "Project not found")
	}

	if !project.HasAdmin(callerID) {
		return nil, utils.NewApiError(http.StatusUnauthorized, denyMessage)
	}

	return &task, nil
}
