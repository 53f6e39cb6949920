package domain

import "time"

type Module string

const (
	ModuleDashboard    Module = "Dashboard"
	ModuleEnquiries    Module = "Enquiries"
	ModuleAdmissions   Module = "Admissions"
	ModuleStudents     Module = "Students"
	ModuleCourses      Module = "Courses"
	ModuleFees         Module = "Fees"
	ModuleBatches      Module = "Batches"
	ModuleCertificates Module = "Certificates"
	ModuleCampuses     Module = "Campuses"
	ModuleEmployees    Module = "Employees"
	ModuleUsers        Module = "Users"
	ModuleEvents       Module = "Events"
	ModuleExpenses     Module = "Expenses"
	ModuleReports      Module = "Reports"
)

// Modules is the closed set of dashboard areas. Adding one is a code change
// here and in every seed permission grid.
var Modules = []Module{
	ModuleDashboard,
	ModuleEnquiries,
	ModuleAdmissions,
	ModuleStudents,
	ModuleCourses,
	ModuleFees,
	ModuleBatches,
	ModuleCertificates,
	ModuleCampuses,
	ModuleEmployees,
	ModuleUsers,
	ModuleEvents,
	ModuleExpenses,
	ModuleReports,
}

type Action string

const (
	ActionView   Action = "view"
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

var Actions = []Action{ActionView, ActionAdd, ActionEdit, ActionDelete}

type PermissionSet struct {
	View   bool `json:"view" yaml:"view" dynamodbav:"view"`
	Add    bool `json:"add" yaml:"add" dynamodbav:"add"`
	Edit   bool `json:"edit" yaml:"edit" dynamodbav:"edit"`
	Delete bool `json:"delete" yaml:"delete" dynamodbav:"delete"`
}

type RolePermissions map[Module]PermissionSet

type Role struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Dashboard   string          `json:"dashboard" yaml:"dashboard"`
	Permissions RolePermissions `json:"permissions" yaml:"permissions"`
}

type UserRecord struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Campus string `json:"campus,omitempty" yaml:"campus,omitempty"`
	RoleID string `json:"roleId" yaml:"roleId"`
}

type AuditEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
}

const (
	CoarseOwner   = "owner"
	CoarseLimited = "limited"
)

// Principal is the identity attached to a request after token handling.
// Degraded marks a principal whose token failed verification and whose
// claims were recovered from the legacy email table; such principals
// resolve permissions from the registry baseline only.
type Principal struct {
	Email     string
	UID       string
	Role      string
	AppRoleID string
	Degraded  bool
}

func (p Principal) IsOwner() bool {
	return p.Role == CoarseOwner
}
