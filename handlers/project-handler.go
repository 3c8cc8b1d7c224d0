package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/sethshivam11/project-store-backend/middleware"
	"github.com/sethshivam11/project-store-backend/services"
	"github.com/sethshivam11/project-store-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

// CreateProject prima multipart formu sa opcionom slikom
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	var title, description, startDateStr, endDateStr string
	var image multipart.File
	var imageName string

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
			return
		}
		title = r.FormValue("title")
		description = r.FormValue("description")
		startDateStr = r.FormValue("startDate")
		endDateStr = r.FormValue("endDate")

		var err error
		image, imageName, err = formFile(r, "image")
		if err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid image file"))
			return
		}
		if image != nil {
			defer image.Close()
		}
	} else {
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			StartDate   string `json:"startDate"`
			EndDate     string `json:"endDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
			return
		}
		title = req.Title
		description = req.Description
		startDateStr = req.StartDate
		endDateStr = req.EndDate
	}

	startDate, err := parseDate(startDateStr)
	if err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid start date"))
		return
	}
	endDate, err := parseDate(endDateStr)
	if err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid end date"))
		return
	}

	project, err := h.Service.CreateProject(r.Context(), user.ID, title, description, startDate, endDate, image, imageName)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, project, "Project created successfully")
}

func (h *ProjectHandler) GetUserProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	projects, err := h.Service.GetUserProjects(r.Context(), user.ID)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, projects, "Projects retrieved successfully")
}

func (h *ProjectHandler) MarkActive(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	if err := h.Service.MarkActive(r.Context(), user.ID, mux.Vars(r)["projectId"]); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Project marked as active")
}

func (h *ProjectHandler) MarkInactive(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	if err := h.Service.MarkInactive(r.Context(), user.ID, mux.Vars(r)["projectId"]); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Project marked as inactive")
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	changes := services.ProjectUpdate{}
	var startDateStr, endDateStr string
	var adminStrs []string
	var image multipart.File
	var imageName string

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
			return
		}
		changes.Title = r.FormValue("title")
		changes.Description = r.FormValue("description")
		startDateStr = r.FormValue("startDate")
		endDateStr = r.FormValue("endDate")
		adminStrs = r.MultipartForm.Value["admin"]

		var err error
		image, imageName, err = formFile(r, "image")
		if err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid image file"))
			return
		}
		if image != nil {
			defer image.Close()
		}
	} else {
		var req struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			StartDate   string   `json:"startDate"`
			EndDate     string   `json:"endDate"`
			Admin       []string `json:"admin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
			return
		}
		changes.Title = req.Title
		changes.Description = req.Description
		startDateStr = req.StartDate
		endDateStr = req.EndDate
		adminStrs = req.Admin
	}

	if startDateStr != "" {
		startDate, err := parseDate(startDateStr)
		if err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid start date"))
			return
		}
		changes.StartDate = &startDate
	}
	if endDateStr != "" {
		endDate, err := parseDate(endDateStr)
		if err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid end date"))
			return
		}
		changes.EndDate = &endDate
	}

	for _, adminStr := range adminStrs {
		adminID, err := primitive.ObjectIDFromHex(adminStr)
		if err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid user ID format"))
			return
		}
		changes.Admin = append(changes.Admin, adminID)
	}

	project, err := h.Service.UpdateProject(r.Context(), user.ID, mux.Vars(r)["projectId"], changes, image, imageName)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, project, "Project updated successfully")
}

func (h *ProjectHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	if err := h.Service.RemoveImage(r.Context(), user.ID, mux.Vars(r)["projectId"]); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Image removed")
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	if err := h.Service.DeleteProject(r.Context(), user.ID, mux.Vars(r)["projectId"]); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Project deleted")
}
