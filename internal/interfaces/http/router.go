package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	adaptermw "institute-admin/internal/adapters/http/middleware"
	"institute-admin/internal/domain"
)

type Middleware struct {
	Auth          echo.MiddlewareFunc
	XRay          echo.MiddlewareFunc
	RequestLogger echo.MiddlewareFunc
}

// NewMainRouter wires every route behind the gate the original dashboard
// applies to the matching view.
func NewMainRouter(
	rolePerms *RolePermsHandler,
	roles *RolesHandler,
	users *UsersHandler,
	audit *AuditHandler,
	claims *ClaimsAdminHandler,
	pages *PagesHandler,
	gates *adaptermw.Gates,
	m Middleware,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if m.XRay != nil {
		e.Use(m.XRay)
	}
	if m.RequestLogger != nil {
		e.Use(m.RequestLogger)
	}
	if m.Auth != nil {
		e.Use(m.Auth)
	}
	e.Use(adaptermw.OwnerDeleteGuard())

	e.GET("/api/ping", func(c echo.Context) error {
		return c.JSON(stdhttp.StatusOK, map[string]string{"message": "ping"})
	})
	e.GET("/login", pages.Login)
	e.GET("/roles", func(c echo.Context) error {
		return c.Redirect(stdhttp.StatusFound, "/dashboard/roles")
	})

	// Remote override store contract: open reads, token-guarded writes.
	e.GET("/api/role-perms", rolePerms.Get)
	e.GET("/api/role-perms/:role_id", rolePerms.Get)
	e.POST("/api/admin/role-perms", rolePerms.AdminSave)
	e.POST("/api/admin/set-role-auth", claims.SetRoleAuth)

	api := e.Group("/api")
	api.GET("/roles", roles.List, gates.RequirePermission(domain.ModuleUsers, domain.ActionView, adaptermw.DashboardOnDeny))
	api.GET("/roles/:role_id", roles.Get, gates.RequirePermission(domain.ModuleUsers, domain.ActionView, adaptermw.DashboardOnDeny))
	api.GET("/roles/:role_id/permissions", roles.WorkingCopy, gates.RequireAuth(domain.CoarseOwner))
	api.PUT("/roles/:role_id/permissions", roles.SavePermissions, gates.RequireAuth(domain.CoarseOwner))
	api.GET("/users", users.List, gates.RequirePermission(domain.ModuleUsers, domain.ActionView, adaptermw.DashboardOnDeny))
	api.POST("/users/:user_id/role", users.AssignRole, gates.RequireAuth(domain.CoarseOwner))
	api.GET("/audit-logs", audit.List, gates.RequireAuth(domain.CoarseOwner))

	dash := e.Group("/dashboard", gates.RequireAuth())
	dash.GET("", pages.Page(domain.ModuleDashboard), gates.RequirePermission(domain.ModuleDashboard, domain.ActionView, adaptermw.HideOnDeny))
	dash.GET("/students", pages.Page(domain.ModuleStudents), gates.RequirePermission(domain.ModuleStudents, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/enquiries", pages.Page(domain.ModuleEnquiries), gates.RequirePermission(domain.ModuleEnquiries, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/admissions", pages.Page(domain.ModuleAdmissions), gates.RequirePermission(domain.ModuleAdmissions, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/courses", pages.Page(domain.ModuleCourses), gates.RequirePermission(domain.ModuleCourses, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/fees", pages.Page(domain.ModuleFees), gates.RequirePermission(domain.ModuleFees, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/reports", pages.Page(domain.ModuleReports), gates.RequirePermission(domain.ModuleReports, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/batches", pages.Page(domain.ModuleBatches), gates.RequirePermission(domain.ModuleBatches, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/certificates", pages.Page(domain.ModuleCertificates), gates.RequirePermission(domain.ModuleCertificates, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/campuses", pages.Page(domain.ModuleCampuses), gates.RequirePermission(domain.ModuleCampuses, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/employees", pages.Page(domain.ModuleEmployees), gates.RequirePermission(domain.ModuleEmployees, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/users", pages.Page(domain.ModuleUsers), gates.RequirePermission(domain.ModuleUsers, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/events", pages.Page(domain.ModuleEvents), gates.RequirePermission(domain.ModuleEvents, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/expenses", pages.Page(domain.ModuleExpenses), gates.RequirePermission(domain.ModuleExpenses, domain.ActionView, adaptermw.DashboardOnDeny))
	dash.GET("/roles", pages.Section("roles"), gates.RequireAuth(domain.CoarseOwner))
	dash.GET("/accounts", pages.Section("accounts"), gates.RequireAuth(domain.CoarseOwner))

	return e
}
