package timeoff

import (
	"errors"
	"testing"
	"time"

	"teamcap/models"
)

var (
	monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	now    = time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
)

func user(id uint, role models.Role) *models.User {
	return &models.User{ID: id, Username: string(role), Role: role}
}

func pendingRequest(owner *models.User, start, end time.Time) *models.TimeOffRequest {
	return &models.TimeOffRequest{
		ID:        1,
		UserID:    owner.ID,
		StartDate: start,
		EndDate:   end,
		Type:      models.TimeOffVacation,
		Status:    models.StatusPending,
	}
}

// TestOverlapsBoundaryTouch ensures a shared single day counts as overlap.
func TestOverlapsBoundaryTouch(t *testing.T) {
	day := monday.AddDate(0, 0, 4)
	if !Overlaps(monday, day, day, day.AddDate(0, 0, 3)) {
		t.Fatal("expected touching ranges to overlap")
	}
	if Overlaps(monday, day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 3)) {
		t.Fatal("expected adjacent ranges not to overlap")
	}
}

// TestNewRequestEntersPending ensures a developer's request starts pending.
func TestNewRequestEntersPending(t *testing.T) {
	dev := user(1, models.RoleDeveloper)
	req, err := NewRequest(dev, dev, monday, monday.AddDate(0, 0, 2), models.TimeOffVacation, "", nil, now)
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	if req.Status != models.StatusPending {
		t.Fatalf("expected pending status, got %s", req.Status)
	}
	if req.ApprovedBy != nil {
		t.Fatal("expected no approver on a pending request")
	}
}

// TestNewRequestManagerAutoApproved ensures manager-tier self requests are
// approved at creation with the creator as approver.
func TestNewRequestManagerAutoApproved(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleManager, models.RoleQAManager} {
		mgr := user(7, role)
		req, err := NewRequest(mgr, mgr, monday, monday.AddDate(0, 0, 1), models.TimeOffVacation, "", nil, now)
		if err != nil {
			t.Fatalf("role %s: NewRequest returned error: %v", role, err)
		}
		if req.Status != models.StatusApproved {
			t.Fatalf("role %s: expected approved status, got %s", role, req.Status)
		}
		if req.ApprovedBy == nil || *req.ApprovedBy != mgr.ID {
			t.Fatalf("role %s: expected creator as approver, got %v", role, req.ApprovedBy)
		}
		if req.ApprovedAt == nil || !req.ApprovedAt.Equal(now) {
			t.Fatalf("role %s: expected approval time %v, got %v", role, now, req.ApprovedAt)
		}
	}
}

// TestNewRequestViewOnlyForbidden ensures view-only users cannot create
// requests.
func TestNewRequestViewOnlyForbidden(t *testing.T) {
	viewer := user(9, models.RoleViewOnly)
	_, err := NewRequest(viewer, viewer, monday, monday, models.TimeOffVacation, "", nil, now)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// TestNewRequestInvalidRange ensures start after end is rejected.
func TestNewRequestInvalidRange(t *testing.T) {
	dev := user(1, models.RoleDeveloper)
	_, err := NewRequest(dev, dev, monday.AddDate(0, 0, 3), monday, models.TimeOffVacation, "", nil, now)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

// TestNewRequestConflict ensures overlap with an existing blocking request is
// rejected, including a single shared day.
func TestNewRequestConflict(t *testing.T) {
	dev := user(1, models.RoleDeveloper)
	existing := []models.TimeOffRequest{{
		ID:        5,
		UserID:    dev.ID,
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 2),
		Status:    models.StatusApproved,
	}}

	_, err := NewRequest(dev, dev, monday.AddDate(0, 0, 2), monday.AddDate(0, 0, 4),
		models.TimeOffVacation, "", existing, now)
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap on shared day, got %v", err)
	}

	// Cancelled requests free their range.
	existing[0].Status = models.StatusCancelled
	_, err = NewRequest(dev, dev, monday, monday.AddDate(0, 0, 2),
		models.TimeOffVacation, "", existing, now)
	if err != nil {
		t.Fatalf("expected cancelled request to be ignored, got %v", err)
	}
}

// TestApproveMatrix verifies the role-pairing approval policy.
func TestApproveMatrix(t *testing.T) {
	tests := []struct {
		actor     models.Role
		subject   models.Role
		wantAllow bool
	}{
		{models.RoleManager, models.RoleDeveloper, true},
		{models.RoleManager, models.RoleTester, false},
		{models.RoleQAManager, models.RoleTester, true},
		{models.RoleQAManager, models.RoleDeveloper, false},
		{models.RoleAdmin, models.RoleDeveloper, true},
		{models.RoleAdmin, models.RoleManager, true},
		{models.RoleDeveloper, models.RoleDeveloper, false},
		{models.RoleViewOnly, models.RoleDeveloper, false},
	}

	for _, tt := range tests {
		owner := user(1, tt.subject)
		req := pendingRequest(owner, monday, monday.AddDate(0, 0, 1))
		actor := user(2, tt.actor)

		err := Approve(req, owner.Role, actor, now)
		if tt.wantAllow {
			if err != nil {
				t.Fatalf("%s approving %s: expected success, got %v", tt.actor, tt.subject, err)
			}
			if req.Status != models.StatusApproved {
				t.Fatalf("%s approving %s: expected approved, got %s", tt.actor, tt.subject, req.Status)
			}
		} else {
			if !errors.Is(err, ErrForbidden) {
				t.Fatalf("%s approving %s: expected ErrForbidden, got %v", tt.actor, tt.subject, err)
			}
			if req.Status != models.StatusPending {
				t.Fatalf("%s approving %s: status changed on failed approval", tt.actor, tt.subject)
			}
		}
	}
}

// TestApproveNonPending ensures approval fails closed on non-pending
// requests.
func TestApproveNonPending(t *testing.T) {
	owner := user(1, models.RoleDeveloper)
	actor := user(2, models.RoleManager)

	for _, status := range []models.TimeOffStatus{
		models.StatusApproved, models.StatusRejected, models.StatusCancelled,
	} {
		req := pendingRequest(owner, monday, monday)
		req.Status = status
		if err := Approve(req, owner.Role, actor, now); !errors.Is(err, ErrNotPending) {
			t.Fatalf("status %s: expected ErrNotPending, got %v", status, err)
		}
		if req.Status != status {
			t.Fatalf("status %s: changed to %s on failed approval", status, req.Status)
		}
	}
}

// TestReject ensures rejection records the decider and is only valid from
// pending.
func TestReject(t *testing.T) {
	owner := user(1, models.RoleTester)
	actor := user(2, models.RoleQAManager)
	req := pendingRequest(owner, monday, monday)

	if err := Reject(req, owner.Role, actor, now); err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if req.Status != models.StatusRejected {
		t.Fatalf("expected rejected status, got %s", req.Status)
	}
	if req.ApprovedBy == nil || *req.ApprovedBy != actor.ID {
		t.Fatalf("expected decider %d recorded, got %v", actor.ID, req.ApprovedBy)
	}

	if err := Reject(req, owner.Role, actor, now); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending on re-rejection, got %v", err)
	}
}

// TestCancel ensures only the owner can cancel, only from approved, with the
// reason recorded.
func TestCancel(t *testing.T) {
	owner := user(1, models.RoleDeveloper)
	req := pendingRequest(owner, monday, monday)
	req.Status = models.StatusApproved

	other := user(2, models.RoleManager)
	if err := Cancel(req, other, "", now); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if req.Status != models.StatusApproved {
		t.Fatal("status changed on failed cancel")
	}

	if err := Cancel(req, owner, "plans changed", now); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if req.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", req.Status)
	}
	if req.CancellationReason != "plans changed" {
		t.Fatalf("expected reason recorded, got %q", req.CancellationReason)
	}

	pending := pendingRequest(owner, monday, monday)
	if err := Cancel(pending, owner, "", now); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved from pending, got %v", err)
	}
}

// TestCanDelete verifies the deletion matrix across statuses and actors.
func TestCanDelete(t *testing.T) {
	owner := user(1, models.RoleDeveloper)
	admin := user(2, models.RoleAdmin)
	manager := user(3, models.RoleManager)
	stranger := user(4, models.RoleTester)

	pending := pendingRequest(owner, monday, monday)
	if err := CanDelete(pending, owner.Role, owner); err != nil {
		t.Fatalf("owner deleting pending: %v", err)
	}
	if err := CanDelete(pending, owner.Role, manager); err != nil {
		t.Fatalf("approver tier deleting pending: %v", err)
	}
	if err := CanDelete(pending, owner.Role, stranger); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unrelated user, got %v", err)
	}

	approvedReq := pendingRequest(owner, monday, monday)
	approvedReq.Status = models.StatusApproved
	if err := CanDelete(approvedReq, owner.Role, owner); !errors.Is(err, ErrNotDeletable) {
		t.Fatalf("expected ErrNotDeletable for approved request, got %v", err)
	}

	holiday := pendingRequest(owner, monday, monday)
	holiday.Status = models.StatusApproved
	holiday.IsAdminCreated = true
	if err := CanDelete(holiday, owner.Role, admin); err != nil {
		t.Fatalf("admin deleting admin-created holiday: %v", err)
	}
	if err := CanDelete(holiday, owner.Role, manager); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for manager deleting holiday, got %v", err)
	}

	own := pendingRequest(manager, monday, monday)
	own.Status = models.StatusApproved
	if err := CanDelete(own, manager.Role, manager); err != nil {
		t.Fatalf("manager deleting own approved request: %v", err)
	}

	rejected := pendingRequest(owner, monday, monday)
	rejected.Status = models.StatusRejected
	if err := CanDelete(rejected, owner.Role, admin); err != nil {
		t.Fatalf("admin deleting rejected request: %v", err)
	}
	if err := CanDelete(rejected, owner.Role, owner); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for owner deleting rejected, got %v", err)
	}
}

// TestProjectHidesType ensures the leave type is visible only to admins and
// the owner.
func TestProjectHidesType(t *testing.T) {
	owner := user(1, models.RoleDeveloper)
	req := pendingRequest(owner, monday, monday)
	req.Type = models.TimeOffSick

	if v := Project(req, owner); v.Type == nil || *v.Type != models.TimeOffSick {
		t.Fatalf("expected owner to see type, got %v", v.Type)
	}
	if v := Project(req, user(2, models.RoleAdmin)); v.Type == nil {
		t.Fatal("expected admin to see type")
	}
	if v := Project(req, user(3, models.RoleManager)); v.Type != nil {
		t.Fatalf("expected type hidden from manager, got %v", *v.Type)
	}
}

// TestVisibleRoles verifies read-side scoping per viewer role.
func TestVisibleRoles(t *testing.T) {
	if _, all := VisibleRoles(user(1, models.RoleAdmin)); !all {
		t.Fatal("expected admin to see all requests")
	}

	roles, all := VisibleRoles(user(2, models.RoleManager))
	if all || len(roles) != 1 || roles[0] != models.RoleDeveloper {
		t.Fatalf("expected manager scope of developers only, got %v all=%v", roles, all)
	}

	roles, all = VisibleRoles(user(3, models.RoleDeveloper))
	if all || len(roles) != 0 {
		t.Fatalf("expected developer to see only own requests, got %v", roles)
	}
}

// TestHolidayBatch verifies all-or-nothing validation of admin holiday
// creation.
func TestHolidayBatch(t *testing.T) {
	admin := user(10, models.RoleAdmin)
	dev1 := user(1, models.RoleDeveloper)
	dev2 := user(2, models.RoleDeveloper)
	start := monday
	end := monday.AddDate(0, 0, 4)

	// One target has an overlapping pending request: nothing is created.
	existing := map[uint][]models.TimeOffRequest{
		dev2.ID: {{
			ID:        9,
			UserID:    dev2.ID,
			StartDate: monday.AddDate(0, 0, 2),
			EndDate:   monday.AddDate(0, 0, 2),
			Status:    models.StatusPending,
		}},
	}
	rows, err := HolidayBatch(admin, []models.User{*dev1, *dev2}, existing, start, end, "office closed", now)
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
	if rows != nil {
		t.Fatalf("expected no rows on failed batch, got %d", len(rows))
	}

	// A manager may only target the tier it manages.
	manager := user(11, models.RoleManager)
	tester := user(3, models.RoleTester)
	_, err = HolidayBatch(manager, []models.User{*tester}, nil, start, end, "", now)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for manager targeting tester, got %v", err)
	}

	// Admin may not target another admin.
	otherAdmin := user(12, models.RoleAdmin)
	_, err = HolidayBatch(admin, []models.User{*otherAdmin}, nil, start, end, "", now)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin target, got %v", err)
	}

	// Clean batch creates one approved admin-created row per target.
	rows, err = HolidayBatch(admin, []models.User{*dev1, *dev2}, nil, start, end, "office closed", now)
	if err != nil {
		t.Fatalf("HolidayBatch returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Status != models.StatusApproved {
			t.Fatalf("expected approved status, got %s", row.Status)
		}
		if !row.IsAdminCreated {
			t.Fatal("expected admin-created flag set")
		}
		if row.Type != models.TimeOffHoliday {
			t.Fatalf("expected holiday type, got %s", row.Type)
		}
		if row.ApprovedBy == nil || *row.ApprovedBy != admin.ID {
			t.Fatalf("expected creator as approver, got %v", row.ApprovedBy)
		}
	}
}

// TestViewOnlyCannotRequest double-checks creation is blocked even when the
// view-only user is the target of someone else's creation path.
func TestViewOnlyCannotRequest(t *testing.T) {
	viewer := user(1, models.RoleViewOnly)
	if viewer.CanRequestTimeOff() {
		t.Fatal("expected view-only role to be unable to request time off")
	}
}
