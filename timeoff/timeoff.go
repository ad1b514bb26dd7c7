// Package timeoff implements the time-off request lifecycle: creation with
// overlap checks, the pending/approved/rejected/cancelled state machine, and
// role-scoped visibility over requests.
package timeoff

import (
	"errors"
	"time"

	"teamcap/capacity"
	"teamcap/models"
)

var (
	ErrInvalidRange = errors.New("start date must not be after end date")
	ErrOverlap      = errors.New("an overlapping pending or approved request already exists")
	ErrNotPending   = errors.New("request is not pending")
	ErrNotApproved  = errors.New("request is not approved")
	ErrForbidden    = errors.New("role does not permit this action")
	ErrNotDeletable = errors.New("approved requests must be cancelled, not deleted")
)

// Overlaps reports whether the inclusive date ranges [aStart,aEnd] and
// [bStart,bEnd] share at least one day. Inputs are normalized to midnight.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	aStart = capacity.NormalizeDate(aStart)
	aEnd = capacity.NormalizeDate(aEnd)
	bStart = capacity.NormalizeDate(bStart)
	bEnd = capacity.NormalizeDate(bEnd)
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// HasConflict reports whether any blocking (pending or approved) request in
// existing overlaps [start,end]. excludeID skips the request being edited.
func HasConflict(existing []models.TimeOffRequest, start, end time.Time, excludeID uint) bool {
	for _, req := range existing {
		if req.ID == excludeID || !req.Blocking() {
			continue
		}
		if Overlaps(start, end, req.StartDate, req.EndDate) {
			return true
		}
	}
	return false
}

// NewRequest builds a time-off request for owner created by creator. Manager
// tiers creating their own request enter Approved directly with themselves as
// approver; everyone else enters Pending. existing must hold the owner's
// current blocking requests.
func NewRequest(creator, owner *models.User, start, end time.Time, typ models.TimeOffType, reason string, existing []models.TimeOffRequest, now time.Time) (*models.TimeOffRequest, error) {
	if !creator.CanRequestTimeOff() {
		return nil, ErrForbidden
	}
	start = capacity.NormalizeDate(start)
	end = capacity.NormalizeDate(end)
	if start.After(end) {
		return nil, ErrInvalidRange
	}
	if HasConflict(existing, start, end, 0) {
		return nil, ErrOverlap
	}

	req := &models.TimeOffRequest{
		UserID:    owner.ID,
		StartDate: start,
		EndDate:   end,
		Type:      typ,
		Status:    models.StatusPending,
		Reason:    reason,
		CreatedBy: &creator.ID,
	}

	if creator.ID == owner.ID && creator.AutoApprovesOwnTimeOff() {
		req.Status = models.StatusApproved
		req.ApprovedBy = &creator.ID
		approvedAt := now
		req.ApprovedAt = &approvedAt
	}

	return req, nil
}

// Approve transitions a pending request to approved. The actor must hold an
// approval right over the owner's role; the check fails closed and leaves the
// request untouched.
func Approve(req *models.TimeOffRequest, ownerRole models.Role, actor *models.User, now time.Time) error {
	if !actor.CanApproveRole(ownerRole) {
		return ErrForbidden
	}
	if req.Status != models.StatusPending {
		return ErrNotPending
	}
	req.Status = models.StatusApproved
	req.ApprovedBy = &actor.ID
	approvedAt := now
	req.ApprovedAt = &approvedAt
	return nil
}

// Reject transitions a pending request to rejected, a terminal state.
func Reject(req *models.TimeOffRequest, ownerRole models.Role, actor *models.User, now time.Time) error {
	if !actor.CanApproveRole(ownerRole) {
		return ErrForbidden
	}
	if req.Status != models.StatusPending {
		return ErrNotPending
	}
	req.Status = models.StatusRejected
	req.ApprovedBy = &actor.ID
	rejectedAt := now
	req.ApprovedAt = &rejectedAt
	return nil
}

// Cancel transitions an approved request to cancelled. Only the owning user
// may cancel.
func Cancel(req *models.TimeOffRequest, actor *models.User, reason string, now time.Time) error {
	if actor.ID != req.UserID {
		return ErrForbidden
	}
	if req.Status != models.StatusApproved {
		return ErrNotApproved
	}
	req.Status = models.StatusCancelled
	req.CancelledBy = &actor.ID
	cancelledAt := now
	req.CancelledAt = &cancelledAt
	req.CancellationReason = reason
	return nil
}

// CanDelete applies the deletion matrix:
//   - pending requests: owner or any approver tier
//   - approved admin-created holidays: admin only
//   - a manager tier's own approved requests: that same user
//   - rejected requests: admin only
//
// Other approved requests cannot be deleted and must be cancelled instead.
func CanDelete(req *models.TimeOffRequest, ownerRole models.Role, actor *models.User) error {
	switch req.Status {
	case models.StatusPending:
		if actor.ID == req.UserID || actor.IsApprover() {
			return nil
		}
		return ErrForbidden
	case models.StatusApproved:
		if req.IsAdminCreated {
			if actor.IsAdmin() {
				return nil
			}
			return ErrForbidden
		}
		if actor.ID == req.UserID && actor.AutoApprovesOwnTimeOff() {
			return nil
		}
		return ErrNotDeletable
	case models.StatusRejected:
		if actor.IsAdmin() {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

// VisibleRoles returns the roles whose requests the viewer may list besides
// their own. Admin visibility is unbounded and signalled by (nil, true).
func VisibleRoles(viewer *models.User) (roles []models.Role, all bool) {
	if viewer.IsAdmin() {
		return nil, true
	}
	return viewer.ApprovableRoles(), false
}

// View is the role-projected representation of a request. The leave type is
// disclosed only to the owner and admins.
type View struct {
	ID                 uint                 `json:"id"`
	UserID             uint                 `json:"user_id"`
	UserFullName       string               `json:"user_full_name,omitempty"`
	StartDate          string               `json:"start_date"`
	EndDate            string               `json:"end_date"`
	Type               *models.TimeOffType  `json:"type,omitempty"`
	Status             models.TimeOffStatus `json:"status"`
	Reason             string               `json:"reason,omitempty"`
	IsAdminCreated     bool                 `json:"is_admin_created"`
	ApprovedBy         *uint                `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time           `json:"approved_at,omitempty"`
	CancelledBy        *uint                `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	CancellationReason string               `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

// Project builds the viewer-specific reduced view of a request.
func Project(req *models.TimeOffRequest, viewer *models.User) View {
	v := View{
		ID:                 req.ID,
		UserID:             req.UserID,
		UserFullName:       req.User.FullName,
		StartDate:          req.StartDate.Format("2006-01-02"),
		EndDate:            req.EndDate.Format("2006-01-02"),
		Status:             req.Status,
		Reason:             req.Reason,
		IsAdminCreated:     req.IsAdminCreated,
		ApprovedBy:         req.ApprovedBy,
		ApprovedAt:         req.ApprovedAt,
		CancelledBy:        req.CancelledBy,
		CancelledAt:        req.CancelledAt,
		CancellationReason: req.CancellationReason,
		CreatedAt:          req.CreatedAt,
	}
	if viewer.IsAdmin() || viewer.ID == req.UserID {
		typ := req.Type
		v.Type = &typ
	}
	return v
}

// HolidayBatch validates an admin holiday creation against all targets before
// building any rows: every target must match the creator's allowed role
// filter and be free of overlapping requests. Validation failure rejects the
// whole batch.
func HolidayBatch(creator *models.User, targets []models.User, existing map[uint][]models.TimeOffRequest, start, end time.Time, reason string, now time.Time) ([]models.TimeOffRequest, error) {
	if !creator.CanCreateHolidays() {
		return nil, ErrForbidden
	}
	start = capacity.NormalizeDate(start)
	end = capacity.NormalizeDate(end)
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	for _, target := range targets {
		if !creator.CanCreateHolidayFor(target.Role) {
			return nil, ErrForbidden
		}
		if HasConflict(existing[target.ID], start, end, 0) {
			return nil, ErrOverlap
		}
	}

	approvedAt := now
	rows := make([]models.TimeOffRequest, 0, len(targets))
	for _, target := range targets {
		rows = append(rows, models.TimeOffRequest{
			UserID:         target.ID,
			StartDate:      start,
			EndDate:        end,
			Type:           models.TimeOffHoliday,
			Status:         models.StatusApproved,
			Reason:         reason,
			IsAdminCreated: true,
			CreatedBy:      &creator.ID,
			ApprovedBy:     &creator.ID,
			ApprovedAt:     &approvedAt,
		})
	}
	return rows, nil
}
