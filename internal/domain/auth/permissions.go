package auth

const (
	RoleHR          = "HR"
	RoleManager     = "MANAGER"
	RoleEmployee    = "EMPLOYEE"
	RoleSystemAdmin = "SYSTEM_ADMIN"
)

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

const (
	PermEmployeesRead  = "core.employees.read"
	PermEmployeesWrite = "core.employees.write"
	PermSalaryRead     = "core.salary.read"
	PermSalaryWrite    = "core.salary.write"
	PermLeaveRead      = "leave.read"
	PermHolidaysRead   = "leave.holidays.read"
	PermHolidaysWrite  = "leave.holidays.write"
	PermPayrollRead    = "payroll.read"
	PermPayrollRun     = "payroll.run"
	PermPayrollDelete  = "payroll.delete"
	PermSettingsRead   = "settings.read"
	PermSettingsWrite  = "settings.write"
	PermAuditRead      = "audit.read"
	PermSystemAdmin    = "admin.system"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermSalaryRead,
	PermSalaryWrite,
	PermLeaveRead,
	PermHolidaysRead,
	PermHolidaysWrite,
	PermPayrollRead,
	PermPayrollRun,
	PermPayrollDelete,
	PermSettingsRead,
	PermSettingsWrite,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermLeaveRead,
		PermHolidaysRead,
		PermPayrollRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermLeaveRead,
		PermHolidaysRead,
		PermPayrollRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermSalaryRead,
		PermSalaryWrite,
		PermLeaveRead,
		PermHolidaysRead,
		PermHolidaysWrite,
		PermPayrollRead,
		PermPayrollRun,
		PermPayrollDelete,
		PermSettingsRead,
		PermSettingsWrite,
		PermAuditRead,
	},
	RoleSystemAdmin: {
		PermSystemAdmin,
		PermSettingsRead,
		PermSettingsWrite,
		PermAuditRead,
	},
}

// SeesAllPayslips reports whether a role may read payslips of other employees.
func SeesAllPayslips(roleName string) bool {
	return roleName == RoleHR
}
