package shared

// PermWildcard grants every permission when present in a role's set.
const PermWildcard = "*"

// HRM platform permissions.
const (
	PermProfileView    = "profile.view"
	PermProfileEditOwn = "profile.edit_own"

	PermEmployeesView = "employees.view"
	PermEmployeesEdit = "employees.edit"

	PermAttendanceCheckIn  = "attendance.check_in"
	PermAttendanceViewOwn  = "attendance.view_own"
	PermAttendanceViewTeam = "attendance.view_team"
	PermAttendanceViewAll  = "attendance.view_all"
	PermAttendanceEdit     = "attendance.edit"

	PermLeaveRequest     = "leave.request"
	PermLeaveViewOwn     = "leave.view_own"
	PermLeaveViewAll     = "leave.view_all"
	PermLeaveApproveTeam = "leave.approve_team"
	PermLeaveApprove     = "leave.approve"

	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"

	PermRolesView = "roles.view"

	PermReportsView   = "reports.view"
	PermReportsExport = "reports.export"

	PermSettingsEdit = "settings.edit"
)

// CoreScopes lists all named permissions gated by the platform.
func CoreScopes() []string {
	return []string{
		PermProfileView,
		PermProfileEditOwn,
		PermEmployeesView,
		PermEmployeesEdit,
		PermAttendanceCheckIn,
		PermAttendanceViewOwn,
		PermAttendanceViewTeam,
		PermAttendanceViewAll,
		PermAttendanceEdit,
		PermLeaveRequest,
		PermLeaveViewOwn,
		PermLeaveViewAll,
		PermLeaveApproveTeam,
		PermLeaveApprove,
		PermUsersView,
		PermUsersEdit,
		PermRolesView,
		PermReportsView,
		PermReportsExport,
		PermSettingsEdit,
	}
}
