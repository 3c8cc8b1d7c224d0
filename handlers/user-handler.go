package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/sethshivam11/project-store-backend/middleware"
	"github.com/sethshivam11/project-store-backend/models"
	"github.com/sethshivam11/project-store-backend/services"
	"github.com/sethshivam11/project-store-backend/utils"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	UserService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

// Register prima multipart formu sa opcionim avatarom ili čist JSON
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User
	var avatar multipart.File
	var avatarName string

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
			return
		}
		user.FullName = r.FormValue("fullName")
		user.Username = r.FormValue("username")
		user.Email = r.FormValue("email")
		user.Password = r.FormValue("password")

		var err error
		avatar, avatarName, err = formFile(r, "avatar")
		if err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid avatar file"))
			return
		}
		if avatar != nil {
			defer avatar.Close()
		}
	} else {
		var req struct {
			FullName string `json:"fullName"`
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
			return
		}
		user.FullName = req.FullName
		user.Username = req.Username
		user.Email = req.Email
		user.Password = req.Password
	}

	created, err := h.UserService.Register(r.Context(), user, avatar, avatarName)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, created, "User registered successfully")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
		return
	}

	user, accessToken, refreshToken, err := h.UserService.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	setAuthCookies(w, accessToken, refreshToken)
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "User logged in successfully")
}

func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "User not verified"))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user, "User found")
}

func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	username := r.URL.Query().Get("username")
	if code == "" || username == "" {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Code and username are required"))
		return
	}

	if err := h.UserService.VerifyEmail(r.Context(), username, code); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"isMailVerified": true}, "User verified")
}

func (h *UserHandler) ResendEmail(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Username is required"))
		return
	}

	if err := h.UserService.ResendEmail(r.Context(), username); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Email sent")
}

func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
		return
	}

	if err := h.UserService.ForgotPassword(r.Context(), req.Email, req.Username, req.Code, req.Password); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Password was changed successfully")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "User not verified"))
		return
	}

	if err := h.UserService.Logout(r.Context(), user.ID); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	clearAuthCookies(w)
	utils.RespondWithJSON(w, http.StatusOK, nil, "User logged out")
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "User not verified"))
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
		return
	}

	if err := h.UserService.UpdatePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Password was updated")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "User not verified"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Avatar file is required"))
		return
	}

	avatar, avatarName, err := formFile(r, "avatar")
	if err != nil || avatar == nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Avatar file is required"))
		return
	}
	defer avatar.Close()

	url, err := h.UserService.UpdateAvatar(r.Context(), user, avatarName, avatar)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"avatar": url}, "Avatar updated")
}

func (h *UserHandler) RemoveAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "User not verified"))
		return
	}

	if err := h.UserService.RemoveAvatar(r.Context(), user.ID); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"avatar": models.DefaultAvatar}, "Avatar removed")
}

func (h *UserHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "User not verified"))
		return
	}

	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
		return
	}

	if err := h.UserService.UpdateEmail(r.Context(), user.ID, req.Email, req.Code); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"email": req.Email}, "Email updated")
}

func (h *UserHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, utils.NewApiError(http.StatusUnauthorized, "User not verified"))
		return
	}

	var req struct {
		FullName string `json:"fullName"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Invalid request data"))
		return
	}

	updated, err := h.UserService.UpdateDetails(r.Context(), user.ID, req.FullName, req.Username)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"fullName": updated.FullName}, "User details updated")
}

// RenewAccessToken je jedina javna ruta za obnavljanje sesije; svaki neuspeh
// briše kolačiće klijenta
func (h *UserHandler) RenewAccessToken(w http.ResponseWriter, r *http.Request) {
	refreshToken := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		refreshToken = cookie.Value
	}
	if refreshToken == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		utils.RespondWithError(w, utils.NewApiError(http.StatusBadRequest, "Refresh token is required"))
		return
	}

	user, accessToken, err := h.UserService.RenewAccessToken(r.Context(), refreshToken)
	if err != nil {
		clearAuthCookies(w)
		utils.RespondWithError(w, err)
		return
	}

	setAuthCookies(w, accessToken, refreshToken)
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user":        user,
		"accessToken": accessToken,
	}, "Access token was renewed")
}

func (h *UserHandler) IsUsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if err := h.UserService.IsUsernameAvailable(r.Context(), username); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, nil, "Username available")
}
