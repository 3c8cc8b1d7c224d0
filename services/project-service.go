package services

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sethshivam11/project-store-backend/logging"
	"github.com/sethshivam11/project-store-backend/models"
	"github.com/sethshivam11/project-store-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectService struct {
	ProjectsCollection Collection
	Media              *utils.CloudinaryClient
}

func NewProjectService(projectsCollection Collection, media *utils.CloudinaryClient) *ProjectService {
	return &ProjectService{
		ProjectsCollection: projectsCollection,
		Media:              media,
	}
}

// ProjectUpdate nosi delimične izmene; admin lista se dodaje na postojeću,
// nikad ne zamenjuje
type ProjectUpdate struct {
	Title       string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Admin       []primitive.ObjectID
}

// CreateProject kreira projekat sa pozivaocem kao jedinim adminom. Neuspeo
// upload slike ne prekida kreiranje.
func (s *ProjectService) CreateProject(ctx context.Context, adminID primitive.ObjectID, title, description string, startDate, endDate time.Time, image io.Reader, imageName string) (*models.Project, error) {
	imageURL := ""
	if image != nil {
		url, err := s.Media.Upload(ctx, imageName, image)
		if err != nil {
			logging.Logger.Warnf("Event ID: PROJECT_IMAGE_UPLOAD_FAILED, Description: %v", err)
		} else {
			imageURL = url
		}
	}

	project := &models.Project{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
		Image:       imageURL,
		Admin:       []primitive.ObjectID{adminID},
		Active:      true,
	}

	if _, err := s.ProjectsCollection.InsertOne(ctx, project); err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_INSERT_FAILED, Description: %v", err)
		return nil, utils.NewApiError(http.StatusInternalServerError, "Error creating project")
	}

	return project, nil
}

// GetUserProjects vraća projekte u kojima je korisnik admin; prazan rezultat
// je 404 po ugovoru API-ja
func (s *ProjectService) GetUserProjects(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	cursor, err := s.ProjectsCollection.Find(ctx, bson.M{"admin": userID})
	if err != nil {
		return nil, utils.NewApiError(http.StatusInternalServerError, "Failed to fetch projects")
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, utils.NewApiError(http.StatusInternalServerError, "Failed to fetch projects")
	}

	if len(projects) == 0 {
		return nil, utils.NewApiError(http.StatusNotFound, "No projects found")
	}

	return projects, nil
}

func (s *ProjectService) MarkActive(ctx context.Context, userID primitive.ObjectID, projectID string) error {
	return s.setActive(ctx, userID, projectID, true)
}

func (s *ProjectService) MarkInactive(ctx context.Context, userID primitive.ObjectID, projectID string) error {
	return s.setActive(ctx, userID, projectID, false)
}

func (s *ProjectService) setActive(ctx context.Context, userID primitive.ObjectID, projectID string, active bool) error {
	project, err := s.findForAdmin(ctx, userID, projectID)
	if err != nil {
		return err
	}

	_, err = s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": project.ID},
		bson.M{"$set": bson.M{"active": active}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to update project")
	}

	return nil
}

// UpdateProject primenjuje delimične izmene; zamena slike prvo briše staru
func (s *ProjectService) UpdateProject(ctx context.Context, userID primitive.ObjectID, projectID string, changes ProjectUpdate, image io.Reader, imageName string) (*models.Project, error) {
	project, err := s.findForAdmin(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	update := bson.M{}
	if changes.Title != "" {
		update["title"] = changes.Title
	}
	if changes.Description != "" {
		update["description"] = changes.Description
	}
	if changes.StartDate != nil {
		update["startDate"] = *changes.StartDate
	}
	if changes.EndDate != nil {
		update["endDate"] = *changes.EndDate
	}

	if image != nil {
		s.Media.DeleteQuietly(ctx, project.Image)
		url, err := s.Media.Upload(ctx, imageName, image)
		if err != nil {
			logging.Logger.Warnf("Event ID: PROJECT_IMAGE_UPLOAD_FAILED, Description: %v", err)
		} else {
			update["image"] = url
		}
	}

	ops := bson.M{}
	if len(update) > 0 {
		ops["$set"] = update
	}
	if len(changes.Admin) > 0 {
		ops["$push"] = bson.M{"admin": bson.M{"$each": changes.Admin}}
	}

	if len(ops) > 0 {
		if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": project.ID}, ops); err != nil {
			return nil, utils.NewApiError(http.StatusInternalServerError, "Failed to update project")
		}
	}

	var updated models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": project.ID}).Decode(&updated); err != nil {
		return nil, utils.NewApiError(http.StatusInternalServerError, "Failed to update project")
	}

	return &updated, nil
}

// RemoveImage briše samo polje; asset ostaje na media store-u
func (s *ProjectService) RemoveImage(ctx context.Context, userID primitive.ObjectID, projectID string) error {
	project, err := s.findForAdmin(ctx, userID, projectID)
	if err != nil {
		return err
	}

	_, err = s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": project.ID},
		bson.M{"$set": bson.M{"image": ""}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to remove image")
	}

	return nil
}

// DeleteProject briše asset pa zapis; taskovi projekta se NE brišu kaskadno
func (s *ProjectService) DeleteProject(ctx context.Context, userID primitive.ObjectID, projectID string) error {
	project, err := s.findForAdmin(ctx, userID, projectID)
	if err != nil {
		return err
	}

	s.Media.DeleteQuietly(ctx, project.Image)

	if _, err := s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": project.ID}); err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to delete project")
	}

	return nil
}

// findForAdmin učitava projekat i zahteva da je pozivalac u admin skupu
func (s *ProjectService) findForAdmin(ctx context.Context, userID primitive.ObjectID, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, utils.NewApiError(http.StatusBadRequest, "Invalid project ID format")
	}

	var project models.Project
	err = s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project)
	if err != nil {
		return nil, utils.NewApiError(http.StatusNotFound, "Project not found")
	}

	if !project.HasAdmin(userID) {
		return nil, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access")
	}

	return &project, nil
}
