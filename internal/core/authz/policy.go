// Package authz is the single authorization policy of the dashboard. The
// route guard and every piece of role-dependent UI ask it the same question:
// given this session and these required roles, render or redirect where?
package authz

import (
	"net/url"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// Screen paths the policy redirects to.
const (
	PathLogin        = "/login"
	PathSelectTenant = "/select-tenant"
	PathAnalytics    = "/analytics"
	PathRoot         = "/"
	PathFallback     = "/"
)

// Outcome of a policy decision.
type Outcome int

const (
	Allow Outcome = iota
	// RedirectLogin: the session is not authenticated.
	RedirectLogin
	// RedirectCorrupted: authenticated without a usable role; the session
	// must be cleared before redirecting to login.
	RedirectCorrupted
	// RedirectLanding: the role is not allowed here.
	RedirectLanding
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "login"
	case RedirectCorrupted:
		return "corrupted"
	case RedirectLanding:
		return "landing"
	default:
		return "unknown"
	}
}

// Decision is the result of Decide.
type Decision struct {
	Outcome Outcome
	// Target is the redirect location; empty when Outcome is Allow.
	Target string
}

// Allowed reports whether the protected content may be rendered.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Decide evaluates access in a fixed order: authentication, then role
// presence, then role membership. An empty required set admits any
// authenticated role.
func Decide(sess domain.Session, required ...domain.Role) Decision {
	if !sess.IsAuthenticated {
		return Decision{Outcome: RedirectLogin, Target: PathLogin}
	}
	if sess.Corrupted() {
		return Decision{Outcome: RedirectCorrupted, Target: PathLogin}
	}
	role := sess.CurrentUser.Role
	if len(required) > 0 && !hasRole(required, role) {
		return Decision{Outcome: RedirectLanding, Target: Landing(role)}
	}
	return Decision{Outcome: Allow}
}

// Permits is Decide reduced to a yes/no for conditional rendering.
func Permits(role domain.Role, required ...domain.Role) bool {
	if role == "" {
		return false
	}
	return len(required) == 0 || hasRole(required, role)
}

// Landing returns the role's default screen.
func Landing(role domain.Role) string {
	switch role {
	case domain.RoleSuperAdmin:
		return PathSelectTenant
	case domain.RoleAdmin:
		return PathAnalytics
	case domain.RoleEmployee:
		return PathRoot
	default:
		return PathFallback
	}
}

// LoginURL returns the login path preserving next as the post-login return
// location. Only same-site relative paths are preserved.
func LoginURL(next string) string {
	if next == "" || next == PathLogin || !SafeReturn(next) {
		return PathLogin
	}
	return PathLogin + "?next=" + url.QueryEscape(next)
}

// SafeReturn reports whether next is a local absolute path.
func SafeReturn(next string) bool {
	if len(next) == 0 || next[0] != '/' {
		return false
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return false
	}
	u, err := url.Parse(next)
	return err == nil && u.Scheme == "" && u.Host == ""
}

func hasRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
