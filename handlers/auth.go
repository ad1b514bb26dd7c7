package handlers

import (
	"encoding/json"
	"net/http"

	"teamcap/config"
	"teamcap/database"
	"teamcap/middleware"
	"teamcap/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	config *config.Config
	log    zerolog.Logger
}

func NewAuthHandler(cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{config: cfg, log: log}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var user models.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&user).Error; err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := middleware.GenerateToken(&user, h.config.JWTExpiration)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to generate token")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: &user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeError(w, http.StatusBadRequest, "current password is incorrect")
		return
	}

	if len(req.NewPassword) < 8 {
		writeFieldError(w, "new password must be at least 8 characters", "new_password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to hash password")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user.PasswordHash = string(hashed)
	user.MustChangePassword = false
	if err := database.GetDB().Save(user).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}
