package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"teamcap/config"
	"teamcap/database"
	"teamcap/middleware"
	"teamcap/models"

	"github.com/rs/zerolog"
)

type SettingsHandler struct {
	config *config.Config
	log    zerolog.Logger
}

func NewSettingsHandler(cfg *config.Config, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{config: cfg, log: log}
}

// resolveSettings loads the stored tunables, falling back to config defaults.
// Shared by the capacity handlers.
func resolveSettings(cfg *config.Config, log zerolog.Logger) models.CapacitySettings {
	defaults := models.CapacitySettings{
		PaceFactor:         cfg.PaceFactor,
		WorkingHoursPerDay: cfg.WorkingHoursPerDay,
		WorkingDaysPerWeek: cfg.WorkingDaysPerWeek,
	}

	var rows []models.Setting
	if err := database.GetDB().Find(&rows).Error; err != nil {
		log.Warn().Err(err).Msg("failed to load settings, using defaults")
		return defaults
	}
	return models.ResolveCapacitySettings(rows, defaults)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resolveSettings(h.config, h.log))
}

type settingsRequest struct {
	PaceFactor         *float64 `json:"pace_factor"`
	WorkingHoursPerDay *float64 `json:"working_hours_per_day"`
	WorkingDaysPerWeek *int     `json:"working_days_per_week"`
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())
	if !actor.CanManageSettings() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updates := make(map[string]string)
	if req.PaceFactor != nil {
		if *req.PaceFactor <= 0 || *req.PaceFactor > 1 {
			writeFieldError(w, "pace factor must be in (0,1]", "pace_factor")
			return
		}
		updates[models.SettingPaceFactor] = strconv.FormatFloat(*req.PaceFactor, 'f', -1, 64)
	}
	if req.WorkingHoursPerDay != nil {
		if *req.WorkingHoursPerDay <= 0 || *req.WorkingHoursPerDay > 24 {
			writeFieldError(w, "working hours per day must be in (0,24]", "working_hours_per_day")
			return
		}
		updates[models.SettingWorkingHoursPerDay] = strconv.FormatFloat(*req.WorkingHoursPerDay, 'f', -1, 64)
	}
	if req.WorkingDaysPerWeek != nil {
		if *req.WorkingDaysPerWeek < 1 || *req.WorkingDaysPerWeek > 7 {
			writeFieldError(w, "working days per week must be in [1,7]", "working_days_per_week")
			return
		}
		updates[models.SettingWorkingDaysPerWeek] = strconv.Itoa(*req.WorkingDaysPerWeek)
	}

	db := database.GetDB()
	for key, value := range updates {
		if err := db.Model(&models.Setting{}).Where("key = ?", key).Update("value", value).Error; err != nil {
			writeDomainError(w, h.log, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, resolveSettings(h.config, h.log))
}
