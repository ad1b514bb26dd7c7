package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"teamcap/config"
	"teamcap/database"
	"teamcap/middleware"
	"teamcap/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	config *config.Config
	log    zerolog.Logger
}

func NewUserHandler(cfg *config.Config, log zerolog.Logger) *UserHandler {
	return &UserHandler{config: cfg, log: log}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := database.GetDB().Order("full_name asc").Find(&users).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type userRequest struct {
	Username string      `json:"username"`
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())
	if !actor.CanManageUsers() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		writeFieldError(w, "username is required", "username")
		return
	}
	if !req.Role.Valid() {
		writeFieldError(w, "invalid role", "role")
		return
	}
	if len(req.Password) < 8 {
		writeFieldError(w, "password must be at least 8 characters", "password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to hash password")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := models.User{
		Username:           req.Username,
		FullName:           req.FullName,
		Email:              req.Email,
		PasswordHash:       string(hashed),
		Role:               req.Role,
		MustChangePassword: true,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())
	if !actor.CanManageUsers() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var user models.User
	if err := database.GetDB().First(&user, id).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		if !req.Role.Valid() {
			writeFieldError(w, "invalid role", "role")
			return
		}
		user.Role = req.Role
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			writeFieldError(w, "password must be at least 8 characters", "password")
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to hash password")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		user.PasswordHash = string(hashed)
		user.MustChangePassword = true
	}

	if err := database.GetDB().Save(&user).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())
	if !actor.CanManageUsers() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if uint(id) == actor.ID {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	var user models.User
	if err := database.GetDB().First(&user, id).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if err := database.GetDB().Delete(&user).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
