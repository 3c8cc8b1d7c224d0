package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sethshivam11/project-store-backend/middleware"
	"github.com/sethshivam11/project-store-backend/services"
	"github.com/sethshivam11/project-store-backend/utils"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	Service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{Service: service}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	_, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid due date"))
		return
	}

	task, err := h.Service.CreateTask(r.Context(), mux.Vars(r)["projectId"], req.Title, req.Description, dueDate)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, task, "Task created successfully")
}

func (h *TaskHandler) GetUserTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Service.GetUserTasks(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, tasks, "Tasks retrieved successfully")
}

func (h *TaskHandler) GetProjectTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Service.GetProjectTasks(r.Context(), mux.Vars(r)["projectId"])
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, tasks, "Tasks retrieved successfully")
}

func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	var req struct {
		TaskID string `json:"taskId"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
		return
	}

	task, err := h.Service.AssignTask(r.Context(), user.ID, req.TaskID, req.UserID)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, task, "Task assigned successfully")
}

func (h *TaskHandler) UnassignTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	var req struct {
		TaskID string `json:"taskId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
		return
	}

	task, err := h.Service.UnassignTask(r.Context(), user.ID, req.TaskID)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, task, "Task unassigned successfully")
}

func (h *TaskHandler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	if err := h.Service.MarkComplete(r.Context(), user.ID, mux.Vars(r)["taskId"]); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Task marked as complete successfully")
}

func (h *TaskHandler) MarkIncomplete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	if err := h.Service.MarkIncomplete(r.Context(), user.ID, mux.Vars(r)["taskId"]); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Task marked as incomplete successfully")
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := parseDate(req.DueDate)
		if err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid due date"))
			return
		}
		dueDate = &parsed
	}

	task, err := h.Service.UpdateTask(r.Context(), user.ID, mux.Vars(r)["taskId"], req.Title, req.Description, dueDate)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, task, "Task updated successfully")
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "Unauthorized access"))
		return
	}

	if err := h.Service.DeleteTask(r.Context(), user.ID, mux.Vars(r)["taskId"]); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Task deleted successfully")
}
