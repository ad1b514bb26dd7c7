package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"teamcap/config"
	"teamcap/database"
	"teamcap/mailer"
	"teamcap/middleware"
	"teamcap/models"
	"teamcap/timeoff"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type TimeOffHandler struct {
	config *config.Config
	log    zerolog.Logger
	mailer *mailer.Mailer
}

func NewTimeOffHandler(cfg *config.Config, log zerolog.Logger, m *mailer.Mailer) *TimeOffHandler {
	return &TimeOffHandler{config: cfg, log: log, mailer: m}
}

// List returns the viewer's role-scoped slice of requests: own records plus
// those of any tiers the viewer may approve; admins see everything.
func (h *TimeOffHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetUserFromContext(r.Context())

	db := database.GetDB()
	query := db.Preload("User").Order("start_date desc")

	roles, all := timeoff.VisibleRoles(viewer)
	if !all {
		if len(roles) > 0 {
			query = query.Joins("JOIN users ON users.id = time_off_requests.user_id").
				Where("time_off_requests.user_id = ? OR users.role IN ?", viewer.ID, roles)
		} else {
			query = query.Where("user_id = ?", viewer.ID)
		}
	}

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("time_off_requests.status = ?", models.TimeOffStatus(status))
	}
	if userIDStr := r.URL.Query().Get("userId"); userIDStr != "" {
		id, err := strconv.ParseUint(userIDStr, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid userId")
			return
		}
		query = query.Where("time_off_requests.user_id = ?", uint(id))
	}

	var requests []models.TimeOffRequest
	if err := query.Find(&requests).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	views := make([]timeoff.View, 0, len(requests))
	for i := range requests {
		views = append(views, timeoff.Project(&requests[i], viewer))
	}
	writeJSON(w, http.StatusOK, views)
}

type createTimeOffRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
}

func (h *TimeOffHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())

	var req createTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeFieldError(w, err.Error(), "start_date")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeFieldError(w, err.Error(), "end_date")
		return
	}
	typ := models.TimeOffType(req.Type)
	if !typ.Valid() {
		writeFieldError(w, "invalid time-off type", "type")
		return
	}

	db := database.GetDB()
	var existing []models.TimeOffRequest
	err = db.Where("user_id = ? AND status IN ?", actor.ID,
		[]models.TimeOffStatus{models.StatusPending, models.StatusApproved}).
		Find(&existing).Error
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	request, err := timeoff.NewRequest(actor, actor, start, end, typ, req.Reason, existing, time.Now().UTC())
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if err := db.Create(request).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	request.User = *actor
	writeJSON(w, http.StatusCreated, timeoff.Project(request, actor))
}

type decideTimeOffRequest struct {
	Action string `json:"action"`
}

// Decide approves or rejects a pending request, subject to the role approval
// matrix.
func (h *TimeOffHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "requestID"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var req decideTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		writeFieldError(w, `action must be "approve" or "reject"`, "action")
		return
	}

	db := database.GetDB()
	var request models.TimeOffRequest
	if err := db.Preload("User").First(&request, id).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	now := time.Now().UTC()
	if req.Action == "approve" {
		err = timeoff.Approve(&request, request.User.Role, actor, now)
	} else {
		err = timeoff.Reject(&request, request.User.Role, actor, now)
	}
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if err := db.Save(&request).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	decision := "approved"
	if req.Action == "reject" {
		decision = "rejected"
	}
	go h.mailer.SendDecision(request.User.Email, request.User.DisplayName(), decision,
		request.StartDate.Format("2006-01-02"), request.EndDate.Format("2006-01-02"))

	writeJSON(w, http.StatusOK, timeoff.Project(&request, actor))
}

type cancelTimeOffRequest struct {
	Reason string `json:"reason"`
}

func (h *TimeOffHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "requestID"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	// The reason body is optional; an empty body cancels without one.
	var req cancelTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	db := database.GetDB()
	var request models.TimeOffRequest
	if err := db.Preload("User").First(&request, id).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if err := timeoff.Cancel(&request, actor, req.Reason, time.Now().UTC()); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if err := db.Save(&request).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, timeoff.Project(&request, actor))
}

func (h *TimeOffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "requestID"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	db := database.GetDB()
	var request models.TimeOffRequest
	if err := db.Preload("User").First(&request, id).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if err := timeoff.CanDelete(&request, request.User.Role, actor); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if err := db.Delete(&request).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "request deleted"})
}

type createHolidayRequest struct {
	UserIDs   []uint `json:"user_ids"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// CreateHoliday bulk-creates approved admin holidays. The batch is validated
// against every target before any row is written; any conflict rejects the
// whole batch.
func (h *TimeOffHandler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())

	var req createHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.UserIDs) == 0 {
		writeFieldError(w, "user_ids is required", "user_ids")
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeFieldError(w, err.Error(), "start_date")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeFieldError(w, err.Error(), "end_date")
		return
	}

	db := database.GetDB()
	var targets []models.User
	if err := db.Where("id IN ?", req.UserIDs).Find(&targets).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	if len(targets) != len(req.UserIDs) {
		writeError(w, http.StatusNotFound, "one or more target users not found")
		return
	}

	var blocking []models.TimeOffRequest
	err = db.Where("user_id IN ? AND status IN ?", req.UserIDs,
		[]models.TimeOffStatus{models.StatusPending, models.StatusApproved}).
		Find(&blocking).Error
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	existing := make(map[uint][]models.TimeOffRequest)
	for _, row := range blocking {
		existing[row.UserID] = append(existing[row.UserID], row)
	}

	rows, err := timeoff.HolidayBatch(actor, targets, existing, start, end, req.Reason, time.Now().UTC())
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"created_count": len(rows),
		"start_date":    start.Format("2006-01-02"),
		"end_date":      end.Format("2006-01-02"),
	})
}

// calendarEntry is the public calendar feed item. It intentionally omits the
// leave type and reason.
type calendarEntry struct {
	UserID       uint   `json:"user_id"`
	UserFullName string `json:"user_full_name"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

func (h *TimeOffHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeFieldError(w, err.Error(), "start")
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeFieldError(w, err.Error(), "end")
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "start must not be after end")
		return
	}

	var requests []models.TimeOffRequest
	err = database.GetDB().Preload("User").
		Where("status = ? AND start_date <= ? AND end_date >= ?", models.StatusApproved, end, start).
		Order("start_date asc").
		Find(&requests).Error
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	entries := make([]calendarEntry, 0, len(requests))
	for _, req := range requests {
		entries = append(entries, calendarEntry{
			UserID:       req.UserID,
			UserFullName: req.User.DisplayName(),
			StartDate:    req.StartDate.Format("2006-01-02"),
			EndDate:      req.EndDate.Format("2006-01-02"),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *TimeOffHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	var count int64
	err := database.GetDB().Model(&models.TimeOffRequest{}).
		Where("status = ?", models.StatusPending).
		Count(&count).Error
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"pending": count})
}
