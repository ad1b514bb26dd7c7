package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"teamcap/capacity"
	"teamcap/config"
	"teamcap/database"
	"teamcap/middleware"
	"teamcap/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxWeeksPerQuery = 12

type CapacityHandler struct {
	config *config.Config
	log    zerolog.Logger
}

func NewCapacityHandler(cfg *config.Config, log zerolog.Logger) *CapacityHandler {
	return &CapacityHandler{config: cfg, log: log}
}

// subjectUsers loads the users counted in capacity, optionally narrowed to
// specific ids.
func subjectUsers(db *gorm.DB, ids []uint) ([]models.User, error) {
	query := db.Where("role IN ?", models.CapacitySubjectRoles()).Order("full_name asc")
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func userIDs(users []models.User) []uint {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

// loadAllocations returns allocations keyed by week label then user id.
func loadAllocations(db *gorm.DB, ids []uint, weeks []time.Time) (map[string]map[uint]*models.Allocation, error) {
	byWeek := make(map[string]map[uint]*models.Allocation)
	if len(ids) == 0 || len(weeks) == 0 {
		return byWeek, nil
	}

	var rows []models.Allocation
	if err := db.Where("user_id IN ? AND week_start IN ?", ids, weeks).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		key := rows[i].WeekStart.Format("2006-01-02")
		if byWeek[key] == nil {
			byWeek[key] = make(map[uint]*models.Allocation)
		}
		byWeek[key][rows[i].UserID] = &rows[i]
	}
	return byWeek, nil
}

// loadApprovedTimeOff returns each user's approved requests overlapping the
// inclusive date range.
func loadApprovedTimeOff(db *gorm.DB, ids []uint, rangeStart, rangeEnd time.Time) (map[uint][]models.TimeOffRequest, error) {
	byUser := make(map[uint][]models.TimeOffRequest)
	if len(ids) == 0 {
		return byUser, nil
	}

	var rows []models.TimeOffRequest
	err := db.Where("user_id IN ? AND status = ? AND start_date <= ? AND end_date >= ?",
		ids, models.StatusApproved, rangeEnd, rangeStart).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		byUser[row.UserID] = append(byUser[row.UserID], row)
	}
	return byUser, nil
}

// weekRows recomputes every user's capacity for one week.
func weekRows(users []models.User, week time.Time, allocs map[string]map[uint]*models.Allocation, approved map[uint][]models.TimeOffRequest, settings models.CapacitySettings) []capacity.UserCapacity {
	key := week.Format("2006-01-02")
	rows := make([]capacity.UserCapacity, 0, len(users))
	for i := range users {
		user := &users[i]
		days := capacity.WorkingDays(week, approved[user.ID], settings.WorkingDaysPerWeek)
		var alloc *models.Allocation
		if weekAllocs := allocs[key]; weekAllocs != nil {
			alloc = weekAllocs[user.ID]
		}
		rows = append(rows, capacity.ComputeUserCapacity(user, week, days, alloc, settings))
	}
	return rows
}

func parseWeekSpan(r *http.Request) (time.Time, []time.Time, error) {
	weekStart, err := parseWeekStart(r.URL.Query().Get("weekStart"))
	if err != nil {
		return time.Time{}, nil, err
	}

	count := 1
	if weeksStr := r.URL.Query().Get("weeks"); weeksStr != "" {
		count, err = strconv.Atoi(weeksStr)
		if err != nil || count < 1 || count > maxWeeksPerQuery {
			return time.Time{}, nil, fmt.Errorf("weeks must be between 1 and %d", maxWeeksPerQuery)
		}
	}

	weeks := make([]time.Time, count)
	for i := 0; i < count; i++ {
		weeks[i] = weekStart.AddDate(0, 0, 7*i)
	}
	return weekStart, weeks, nil
}

func (h *CapacityHandler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	_, weeks, err := parseWeekSpan(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var filterIDs []uint
	if userIDStr := r.URL.Query().Get("userId"); userIDStr != "" {
		id, err := strconv.ParseUint(userIDStr, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid userId")
			return
		}
		filterIDs = []uint{uint(id)}
	}

	db := database.GetDB()
	users, err := subjectUsers(db, filterIDs)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	settings := resolveSettings(h.config, h.log)
	ids := userIDs(users)
	allocs, err := loadAllocations(db, ids, weeks)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	approved, err := loadApprovedTimeOff(db, ids, weeks[0], weeks[len(weeks)-1].AddDate(0, 0, 6))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	var rows []capacity.UserCapacity
	for _, week := range weeks {
		rows = append(rows, weekRows(users, week, allocs, approved, settings)...)
	}
	writeJSON(w, http.StatusOK, rows)
}

type allocationRequest struct {
	Backend           float64 `json:"backend"`
	Frontend          float64 `json:"frontend"`
	CodeReview        float64 `json:"code_review"`
	ReleaseMgmt       float64 `json:"release_mgmt"`
	UX                float64 `json:"ux"`
	TechnicalAnalysis float64 `json:"technical_analysis"`
	ProdSupport       float64 `json:"prod_support"`
	Priority          string  `json:"priority"`
}

var allocationUpdateColumns = []string{
	"backend", "frontend", "code_review", "release_mgmt", "ux",
	"technical_analysis", "prod_support", "priority", "updated_at",
}

func (h *CapacityHandler) UpsertAllocation(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())
	if !actor.CanManageAllocations() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	targetID, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	weekStart, err := parseWeekStart(chi.URLParam(r, "weekStart"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req allocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Priority) > 50 {
		writeFieldError(w, "priority must be at most 50 characters", "priority")
		return
	}

	db := database.GetDB()
	var target models.User
	if err := db.First(&target, targetID).Error; err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	if !target.IsCapacitySubject() {
		writeFieldError(w, "user role does not hold allocations", "user_id")
		return
	}

	alloc := models.Allocation{
		UserID:            target.ID,
		WeekStart:         weekStart,
		Backend:           req.Backend,
		Frontend:          req.Frontend,
		CodeReview:        req.CodeReview,
		ReleaseMgmt:       req.ReleaseMgmt,
		UX:                req.UX,
		TechnicalAnalysis: req.TechnicalAnalysis,
		ProdSupport:       req.ProdSupport,
		Priority:          req.Priority,
	}
	if err := capacity.ValidateAllocation(&alloc); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
		DoUpdates: clause.AssignmentColumns(allocationUpdateColumns),
	}).Create(&alloc).Error
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	settings := resolveSettings(h.config, h.log)
	approved, err := loadApprovedTimeOff(db, []uint{target.ID}, weekStart, weekStart.AddDate(0, 0, 6))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	days := capacity.WorkingDays(weekStart, approved[target.ID], settings.WorkingDaysPerWeek)
	writeJSON(w, http.StatusOK, capacity.ComputeUserCapacity(&target, weekStart, days, &alloc, settings))
}

type copyWeekRequest struct {
	WeekStart string `json:"week_start"`
}

type copyWeekResponse struct {
	CopiedCount int    `json:"copied_count"`
	SourceWeek  string `json:"source_week"`
	TargetWeek  string `json:"target_week"`
}

func (h *CapacityHandler) CopyFromPreviousWeek(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())
	if !actor.CanManageAllocations() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req copyWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	targetWeek, err := parseWeekStart(req.WeekStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sourceWeek := targetWeek.AddDate(0, 0, -7)

	db := database.GetDB()
	var source []models.Allocation
	err = db.Joins("JOIN users ON users.id = allocations.user_id").
		Where("allocations.week_start = ? AND users.role IN ?", sourceWeek, models.CapacitySubjectRoles()).
		Find(&source).Error
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	rows, err := capacity.CopyWeekPlan(source, targetWeek)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
				DoUpdates: clause.AssignmentColumns(allocationUpdateColumns),
			}).Create(&rows[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, copyWeekResponse{
		CopiedCount: len(rows),
		SourceWeek:  sourceWeek.Format("2006-01-02"),
		TargetWeek:  targetWeek.Format("2006-01-02"),
	})
}

func (h *CapacityHandler) TeamOverview(w http.ResponseWriter, r *http.Request) {
	_, weeks, err := parseWeekSpan(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	db := database.GetDB()
	users, err := subjectUsers(db, nil)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	settings := resolveSettings(h.config, h.log)
	ids := userIDs(users)
	allocs, err := loadAllocations(db, ids, weeks)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	approved, err := loadApprovedTimeOff(db, ids, weeks[0], weeks[len(weeks)-1].AddDate(0, 0, 6))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	overviews := make([]capacity.TeamOverview, 0, len(weeks))
	for _, week := range weeks {
		rows := weekRows(users, week, allocs, approved, settings)
		overviews = append(overviews, capacity.ComputeTeamOverview(week, rows, settings))
	}
	writeJSON(w, http.StatusOK, overviews)
}

// buildExport walks the requested week range and recomputes every user-week
// row from scratch.
func (h *CapacityHandler) buildExport(r *http.Request) (*capacity.ExportResult, error) {
	startWeek, err := parseWeekStart(r.URL.Query().Get("startWeek"))
	if err != nil {
		return nil, fmt.Errorf("startWeek: %w", err)
	}
	endWeek, err := parseWeekStart(r.URL.Query().Get("endWeek"))
	if err != nil {
		return nil, fmt.Errorf("endWeek: %w", err)
	}
	if !startWeek.Before(endWeek) {
		return nil, fmt.Errorf("startWeek must be before endWeek")
	}

	var filterIDs []uint
	if idsStr := r.URL.Query().Get("userIds"); idsStr != "" {
		for _, part := range strings.Split(idsStr, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid userIds value %q", part)
			}
			filterIDs = append(filterIDs, uint(id))
		}
	}

	var weeks []time.Time
	for week := startWeek; !week.After(endWeek); week = week.AddDate(0, 0, 7) {
		weeks = append(weeks, week)
	}

	db := database.GetDB()
	users, err := subjectUsers(db, filterIDs)
	if err != nil {
		return nil, err
	}

	settings := resolveSettings(h.config, h.log)
	ids := userIDs(users)
	allocs, err := loadAllocations(db, ids, weeks)
	if err != nil {
		return nil, err
	}
	approved, err := loadApprovedTimeOff(db, ids, weeks[0], weeks[len(weeks)-1].AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}

	rowsPerWeek := make([][]capacity.UserCapacity, len(weeks))
	for i, week := range weeks {
		rowsPerWeek[i] = weekRows(users, week, allocs, approved, settings)
	}
	return capacity.BuildExport(startWeek, endWeek, weeks, rowsPerWeek), nil
}

func (h *CapacityHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())
	if !actor.CanManageAllocations() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	result, err := h.buildExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CapacityHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserFromContext(r.Context())
	if !actor.CanManageAllocations() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	result, err := h.buildExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	includeNotes := r.URL.Query().Get("includeNotes") == "true"
	workbook, err := capacity.BuildWorkbook(result, includeNotes)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build workbook")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	startWeek, _ := parseWeekStart(r.URL.Query().Get("startWeek"))
	endWeek, _ := parseWeekStart(r.URL.Query().Get("endWeek"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", capacity.ExportFilename(startWeek, endWeek)))

	if err := workbook.Write(w); err != nil {
		h.log.Error().Err(err).Msg("failed to write workbook")
	}
}
