package models

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleManager   Role = "MANAGER"
	RoleDeveloper Role = "DEVELOPER"
	RoleTester    Role = "TESTER"
	RoleQAManager Role = "QA_MANAGER"
	RoleViewOnly  Role = "VIEW_ONLY"
)

// AllRoles lists every valid role, used for input validation.
var AllRoles = []Role{
	RoleAdmin, RoleManager, RoleDeveloper, RoleTester, RoleQAManager, RoleViewOnly,
}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// capability is the per-role entry of the access control matrix. Every
// role-dependent decision in the application goes through this table instead
// of ad-hoc role comparisons in handlers.
type capability struct {
	// approves lists the roles whose pending time-off requests this role may
	// approve or reject. Admin approval of all non-admin roles is spelled out
	// explicitly so the table stays the single source of truth.
	approves []Role

	// capacitySubject marks roles that are counted in team capacity and may
	// hold weekly allocations. Management and read-only tiers allocate
	// nothing and are excluded from rollups.
	capacitySubject bool

	// canRequestTimeOff gates creation of time-off requests for oneself.
	canRequestTimeOff bool

	// autoApproveOwn makes self-created requests enter the Approved state
	// directly, with the creator recorded as approver.
	autoApproveOwn bool

	// holidayTargets lists the roles this role may create admin holidays for.
	holidayTargets []Role

	manageUsers       bool
	manageAllocations bool
	manageSettings    bool
}

var roleCapabilities = map[Role]capability{
	RoleAdmin: {
		approves:          []Role{RoleManager, RoleDeveloper, RoleTester, RoleQAManager, RoleViewOnly},
		canRequestTimeOff: true,
		autoApproveOwn:    true,
		holidayTargets:    []Role{RoleManager, RoleDeveloper, RoleTester, RoleQAManager, RoleViewOnly},
		manageUsers:       true,
		manageAllocations: true,
		manageSettings:    true,
	},
	RoleManager: {
		approves:          []Role{RoleDeveloper},
		canRequestTimeOff: true,
		autoApproveOwn:    true,
		holidayTargets:    []Role{RoleDeveloper},
		manageAllocations: true,
	},
	RoleQAManager: {
		approves:          []Role{RoleTester},
		canRequestTimeOff: true,
		autoApproveOwn:    true,
		holidayTargets:    []Role{RoleTester},
		manageAllocations: true,
	},
	RoleDeveloper: {
		capacitySubject:   true,
		canRequestTimeOff: true,
	},
	RoleTester: {
		capacitySubject:   true,
		canRequestTimeOff: true,
	},
	RoleViewOnly: {},
}

// CapacitySubjectRoles returns the roles shown in team capacity rollups.
func CapacitySubjectRoles() []Role {
	var roles []Role
	for _, r := range AllRoles {
		if roleCapabilities[r].capacitySubject {
			roles = append(roles, r)
		}
	}
	return roles
}

func (u *User) IsCapacitySubject() bool {
	return roleCapabilities[u.Role].capacitySubject
}

func (u *User) CanRequestTimeOff() bool {
	return roleCapabilities[u.Role].canRequestTimeOff
}

func (u *User) AutoApprovesOwnTimeOff() bool {
	return roleCapabilities[u.Role].autoApproveOwn
}

func (u *User) CanApproveRole(subject Role) bool {
	for _, r := range roleCapabilities[u.Role].approves {
		if r == subject {
			return true
		}
	}
	return false
}

// IsApprover reports whether the role approves at least one tier.
func (u *User) IsApprover() bool {
	return len(roleCapabilities[u.Role].approves) > 0
}

// ApprovableRoles returns the tiers whose requests this user may act on,
// which is also the visibility scope beyond the user's own records.
func (u *User) ApprovableRoles() []Role {
	return roleCapabilities[u.Role].approves
}

func (u *User) CanCreateHolidayFor(target Role) bool {
	for _, r := range roleCapabilities[u.Role].holidayTargets {
		if r == target {
			return true
		}
	}
	return false
}

func (u *User) CanCreateHolidays() bool {
	return len(roleCapabilities[u.Role].holidayTargets) > 0
}

func (u *User) CanManageUsers() bool {
	return roleCapabilities[u.Role].manageUsers
}

func (u *User) CanManageAllocations() bool {
	return roleCapabilities[u.Role].manageAllocations
}

func (u *User) CanManageSettings() bool {
	return roleCapabilities[u.Role].manageSettings
}
