// Package guard decides whether a navigation target is permitted for the
// current session. The decision logic is pure; callers translate decisions
// into redirects or error responses.
package guard

import (
	"github.com/agrunetcore/farmhub/internal/session"
	"github.com/agrunetcore/farmhub/types"
)

// Well-known navigation targets.
const (
	SignInPath    = "/auth/signin"
	SignUpPath    = "/auth/signup"
	DashboardPath = "/dashboard"
	HomePath      = "/"
)

// Decision is the outcome of a guard evaluation.
type Decision int

const (
	// Allow permits the requested path. While the session state is still
	// Loading the guard always allows: no redirect action is taken until
	// the stored session has been resolved.
	Allow Decision = iota
	// RedirectSignIn sends the visitor to the sign-in view.
	RedirectSignIn
	// RedirectDashboard sends an already-authenticated visitor away from
	// the public auth views to the default landing page.
	RedirectDashboard
	// RedirectHome sends an authenticated but under-privileged visitor
	// away from a role-gated view.
	RedirectHome
)

// Target returns the navigation target for a redirect decision, or "" for
// Allow.
func (d Decision) Target() string {
	switch d {
	case RedirectSignIn:
		return SignInPath
	case RedirectDashboard:
		return DashboardPath
	case RedirectHome:
		return HomePath
	default:
		return ""
	}
}

func isPublic(path string) bool {
	return path == SignInPath || path == SignUpPath
}

// Decide evaluates the base guard: unauthenticated visitors may only see
// the public auth paths, and authenticated visitors are bounced off them.
func Decide(state session.State, path string, sess *session.Session) Decision {
	if state == session.StateLoading {
		return Allow
	}

	authenticated := sess.Active()
	if !authenticated && !isPublic(path) {
		return RedirectSignIn
	}
	if authenticated && isPublic(path) {
		return RedirectDashboard
	}
	return Allow
}

// DecideDashboard evaluates the stricter superadmin-only gate that sits in
// front of the admin dashboard. Any resolved session without the superadmin
// role is redirected away regardless of path.
func DecideDashboard(state session.State, sess *session.Session) Decision {
	if state == session.StateLoading {
		return Allow
	}
	if !sess.HasRole(types.RoleSuperAdmin) {
		return RedirectHome
	}
	return Allow
}
