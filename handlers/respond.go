package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"teamcap/capacity"
	"teamcap/timeoff"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeFieldError(w http.ResponseWriter, message, field string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message, Field: field})
}

// writeDomainError maps domain sentinel errors onto the HTTP taxonomy:
// validation and state conflicts are 400, missing rights 403, missing
// records 404, everything else a logged 500 with a generic message.
func writeDomainError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, timeoff.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, timeoff.ErrOverlap),
		errors.Is(err, timeoff.ErrNotPending),
		errors.Is(err, timeoff.ErrNotApproved),
		errors.Is(err, timeoff.ErrInvalidRange),
		errors.Is(err, timeoff.ErrNotDeletable),
		errors.Is(err, capacity.ErrOverAllocated):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, capacity.ErrNoSourceWeek),
		errors.Is(err, gorm.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseWeekStart parses a YYYY-MM-DD query value and requires it to be a
// Monday.
func parseWeekStart(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errors.New("invalid date, expected YYYY-MM-DD")
	}
	t = capacity.NormalizeDate(t)
	if !capacity.IsWeekStart(t) {
		return time.Time{}, errors.New("week start must be a Monday")
	}
	return t, nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return capacity.NormalizeDate(t), nil
}
