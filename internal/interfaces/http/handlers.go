package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"strings"

	"github.com/labstack/echo/v4"
	adaptermw "institute-admin/internal/adapters/http/middleware"
	"institute-admin/internal/application"
	"institute-admin/internal/domain"
	"institute-admin/internal/ports"
)

func handleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(stdhttp.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.JSON(stdhttp.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrPermissionDeny):
		return c.JSON(stdhttp.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		return c.JSON(stdhttp.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// actorLabel names the operator in audit entries.
func actorLabel(c echo.Context) string {
	if p, ok := adaptermw.PrincipalFrom(c); ok && p.Email != "" {
		return p.Email
	}
	return "Admin User"
}

// RolePermsHandler is the remote override store's own HTTP contract: open
// reads, writes guarded by the admin API token header.
type RolePermsHandler struct {
	store      ports.OverrideStore
	adminToken string
	logger     ports.Logger
}

func NewRolePermsHandler(store ports.OverrideStore, adminToken string, logger ports.Logger) *RolePermsHandler {
	return &RolePermsHandler{store: store, adminToken: adminToken, logger: logger}
}

func (h *RolePermsHandler) Get(c echo.Context) error {
	roleID := c.Param("role_id")
	if roleID == "" {
		all, err := h.store.All(c.Request().Context())
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(stdhttp.StatusOK, all)
	}
	perms, err := h.store.Get(c.Request().Context(), roleID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(stdhttp.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{"roleId": roleID, "permissions": perms})
}

func (h *RolePermsHandler) AdminSave(c echo.Context) error {
	token := strings.TrimSpace(c.Request().Header.Get("x-admin-token"))
	if h.adminToken == "" || token != h.adminToken {
		return c.JSON(stdhttp.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	var req struct {
		RoleID      string                 `json:"roleId"`
		Permissions domain.RolePermissions `json:"permissions"`
	}
	if err := c.Bind(&req); err != nil || req.RoleID == "" || req.Permissions == nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}
	if err := h.store.Put(c.Request().Context(), req.RoleID, req.Permissions); err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]bool{"ok": true})
}

// RolesHandler exposes the registry and the permission editor.
type RolesHandler struct {
	registry *application.RoleRegistry
	editor   *application.Editor
	logger   ports.Logger
}

func NewRolesHandler(registry *application.RoleRegistry, editor *application.Editor, logger ports.Logger) *RolesHandler {
	return &RolesHandler{registry: registry, editor: editor, logger: logger}
}

func (h *RolesHandler) List(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, h.registry.ListRoles())
}

func (h *RolesHandler) Get(c echo.Context) error {
	role, err := h.registry.FindRole(c.Param("role_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, role)
}

func (h *RolesHandler) WorkingCopy(c echo.Context) error {
	roleID := c.Param("role_id")
	buffer, err := h.editor.LoadWorkingCopy(roleID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{"roleId": roleID, "permissions": buffer})
}

func (h *RolesHandler) SavePermissions(c echo.Context) error {
	var req struct {
		Permissions domain.RolePermissions `json:"permissions"`
	}
	if err := c.Bind(&req); err != nil || req.Permissions == nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}
	operatorToken := strings.TrimSpace(c.Request().Header.Get("x-admin-token"))
	result, err := h.editor.Save(c.Request().Context(), c.Param("role_id"), req.Permissions, operatorToken, actorLabel(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, result)
}

type UsersHandler struct {
	users *application.UserService
}

func NewUsersHandler(users *application.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) List(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, h.users.ListUsers())
}

func (h *UsersHandler) AssignRole(c echo.Context) error {
	var req struct {
		RoleID string `json:"roleId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}
	result, err := h.users.AssignRole(c.Request().Context(), c.Param("user_id"), req.RoleID, adaptermw.IDTokenFrom(c), actorLabel(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, result)
}

type AuditHandler struct {
	audit ports.AuditRepository
}

func NewAuditHandler(audit ports.AuditRepository) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(c echo.Context) error {
	entries, err := h.audit.List(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, entries)
}

// ClaimsAdminHandler forwards role claims to the identity provider on
// behalf of an owner. Accepts a single {email, role} object or an array.
type ClaimsAdminHandler struct {
	claims     ports.ClaimSetter
	configured bool
	logger     ports.Logger
}

func NewClaimsAdminHandler(claims ports.ClaimSetter, configured bool, logger ports.Logger) *ClaimsAdminHandler {
	return &ClaimsAdminHandler{claims: claims, configured: configured, logger: logger}
}

type setRoleItem struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type setRoleResult struct {
	Email        string `json:"email"`
	OK           bool   `json:"ok"`
	AppliedClaim string `json:"appliedClaim,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (h *ClaimsAdminHandler) SetRoleAuth(c echo.Context) error {
	if !h.configured {
		return c.JSON(stdhttp.StatusInternalServerError, map[string]string{"error": "Admin not configured"})
	}
	p, ok := adaptermw.PrincipalFrom(c)
	if !ok {
		return c.JSON(stdhttp.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	if p.Degraded {
		return c.JSON(stdhttp.StatusUnauthorized, map[string]string{"error": "Invalid token"})
	}
	if !p.IsOwner() {
		return c.JSON(stdhttp.StatusForbidden, map[string]string{"error": "Forbidden"})
	}

	var raw json.RawMessage
	if err := c.Bind(&raw); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}
	var items []setRoleItem
	if err := json.Unmarshal(raw, &items); err != nil {
		var single setRoleItem
		if err := json.Unmarshal(raw, &single); err != nil {
			return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		}
		items = []setRoleItem{single}
	}

	callerToken := adaptermw.IDTokenFrom(c)
	results := make([]setRoleResult, 0, len(items))
	for _, it := range items {
		if it.Email == "" || it.Role == "" {
			results = append(results, setRoleResult{Email: it.Email, Error: "Invalid payload"})
			continue
		}
		claim := application.CoarseClaimFor(it.Role)
		if err := h.claims.SetRoleClaims(c.Request().Context(), callerToken, it.Email, claim, it.Role); err != nil {
			h.logger.Warn(c.Request().Context(), "set role claims failed", "email", it.Email, "error", err)
			results = append(results, setRoleResult{Email: it.Email, Error: err.Error()})
			continue
		}
		results = append(results, setRoleResult{Email: it.Email, OK: true, AppliedClaim: claim})
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{"ok": true, "results": results})
}

// PagesHandler serves placeholders for the dashboard views. The module
// content itself lives outside this service; only the gating matters here.
type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

func (h *PagesHandler) Page(module domain.Module) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(stdhttp.StatusOK, map[string]string{"module": string(module)})
	}
}

func (h *PagesHandler) Section(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(stdhttp.StatusOK, map[string]string{"section": name})
	}
}

func (h *PagesHandler) Login(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		"message": "sign in with the identity provider and retry with a bearer token",
		"from":    c.QueryParam("from"),
	})
}
