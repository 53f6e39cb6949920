package middleware

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/labstack/echo/v4"
	"institute-admin/internal/application"
	"institute-admin/internal/domain"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// PrincipalFrom reads the principal the token middleware attached, if any.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get("principal").(domain.Principal)
	return p, ok
}

// IDTokenFrom returns the raw bearer token for forwarding to collaborators.
func IDTokenFrom(c echo.Context) string {
	t, _ := c.Get("id_token").(string)
	return t
}

func redirectToLogin(c echo.Context) error {
	return c.Redirect(http.StatusFound, LoginPath+"?from="+url.QueryEscape(c.Request().URL.Path))
}

// Gates holds the two route guards. Both fail closed: no principal, no
// resolution, or a malformed grid all read as denied.
type Gates struct {
	resolver *application.Resolver
}

func NewGates(resolver *application.Resolver) *Gates {
	return &Gates{resolver: resolver}
}

// RequireAuth is the identity gate: authentication plus an optional coarse
// role allow-list. No module/action check happens here.
func (g *Gates) RequireAuth(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return redirectToLogin(c)
			}
			if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, p.Role) {
				return c.Redirect(http.StatusFound, DashboardPath)
			}
			return next(c)
		}
	}
}

type DenyMode int

const (
	// DenyRedirectDashboard sends the caller to the dashboard landing route.
	DenyRedirectDashboard DenyMode = iota
	// DenyRedirect sends the caller to the policy's path.
	DenyRedirect
	// DenyHide responds with no content and no navigation.
	DenyHide
)

type DenyPolicy struct {
	Mode DenyMode
	Path string
}

func RedirectOnDeny(path string) DenyPolicy {
	return DenyPolicy{Mode: DenyRedirect, Path: path}
}

var (
	DashboardOnDeny = DenyPolicy{Mode: DenyRedirectDashboard}
	HideOnDeny      = DenyPolicy{Mode: DenyHide}
)

// RequirePermission is the capability gate for one (module, action) pair.
// Owner principals bypass the permission lookup entirely; that bypass lives
// here, not in any permission grid, so no override can revoke it.
func (g *Gates) RequirePermission(module domain.Module, action domain.Action, policy DenyPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return redirectToLogin(c)
			}
			if p.IsOwner() {
				return next(c)
			}
			authority := g.resolver.Resolve(c.Request().Context(), p)
			if authority.Allows(module, action) {
				return next(c)
			}
			switch policy.Mode {
			case DenyHide:
				return c.NoContent(http.StatusNoContent)
			case DenyRedirect:
				return c.Redirect(http.StatusFound, policy.Path)
			default:
				return c.Redirect(http.StatusFound, DashboardPath)
			}
		}
	}
}

// OwnerDeleteGuard rejects any DELETE from a non-owner, regardless of what
// per-route gates would allow. Degraded principals count as unverified.
func OwnerDeleteGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodDelete {
				return next(c)
			}
			p, ok := PrincipalFrom(c)
			if !ok || p.Degraded {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			if !p.IsOwner() {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
			}
			return next(c)
		}
	}
}
