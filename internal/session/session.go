// Package session holds the authenticated identity and token for a signed-in
// user, with inactivity-based expiry. Records are keyed by token and live in
// a pluggable key/value backend.
package session

import (
	"time"

	"github.com/agrunetcore/farmhub/types"
)

// InactivityLimit is the default idle time after which a session expires.
const InactivityLimit = 3 * time.Hour

// State describes the resolution of the stored session. Loading is the only
// initial state and lasts until Restore has been consulted.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

// Session is the authenticated identity and token for one signed-in user.
type Session struct {
	User         types.User
	Token        string
	LastActivity time.Time
}

// Active reports whether the session has both an identity and a token.
// Expiry is evaluated separately against a clock.
func (s *Session) Active() bool {
	return s != nil && s.User.ID != "" && s.Token != ""
}

// HasRole reports whether the session is active and its role is one of the
// required roles.
func (s *Session) HasRole(roles ...string) bool {
	if !s.Active() {
		return false
	}
	for _, role := range roles {
		if s.User.Role == role {
			return true
		}
	}
	return false
}

// IsExpired reports whether the inactivity limit has elapsed between the
// last tracked activity and now.
func IsExpired(now, lastActivity time.Time, limit time.Duration) bool {
	return now.Sub(lastActivity) > limit
}
