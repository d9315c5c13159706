package guard

import (
	"testing"

	"github.com/agrunetcore/farmhub/internal/session"
	"github.com/agrunetcore/farmhub/types"
)

func authedSession(role string) *session.Session {
	return &session.Session{
		User:  types.User{ID: "42", Role: role},
		Token: "tok",
	}
}

func TestDecideLoadingAllowsEverything(t *testing.T) {
	for _, path := range []string{SignInPath, DashboardPath, "/farmers"} {
		if d := Decide(session.StateLoading, path, nil); d != Allow {
			t.Fatalf("loading state must allow %s, got %v", path, d)
		}
	}
}

func TestDecideUnauthenticated(t *testing.T) {
	if d := Decide(session.StateUnauthenticated, DashboardPath, nil); d != RedirectSignIn {
		t.Fatalf("expected RedirectSignIn for protected path, got %v", d)
	}
	if d := Decide(session.StateUnauthenticated, SignInPath, nil); d != Allow {
		t.Fatalf("sign-in must stay reachable while signed out, got %v", d)
	}
	if d := Decide(session.StateUnauthenticated, SignUpPath, nil); d != Allow {
		t.Fatalf("sign-up must stay reachable while signed out, got %v", d)
	}
}

func TestDecideAuthenticated(t *testing.T) {
	sess := authedSession(types.RoleUser)

	if d := Decide(session.StateAuthenticated, SignInPath, sess); d != RedirectDashboard {
		t.Fatalf("expected bounce off the auth views, got %v", d)
	}
	if d := Decide(session.StateAuthenticated, DashboardPath, sess); d != Allow {
		t.Fatalf("expected authenticated access to protected path, got %v", d)
	}
}

func TestDecideDashboardGate(t *testing.T) {
	if d := DecideDashboard(session.StateLoading, nil); d != Allow {
		t.Fatalf("loading state must not redirect, got %v", d)
	}
	if d := DecideDashboard(session.StateAuthenticated, authedSession(types.RoleUser)); d != RedirectHome {
		t.Fatalf("expected non-superadmin bounce to home, got %v", d)
	}
	if d := DecideDashboard(session.StateAuthenticated, authedSession(types.RoleAdmin)); d != RedirectHome {
		t.Fatalf("admin role does not satisfy the superadmin gate, got %v", d)
	}
	if d := DecideDashboard(session.StateAuthenticated, authedSession(types.RoleSuperAdmin)); d != Allow {
		t.Fatalf("expected superadmin access, got %v", d)
	}
}

func TestDecisionTarget(t *testing.T) {
	targets := map[Decision]string{
		Allow:             "",
		RedirectSignIn:    SignInPath,
		RedirectDashboard: DashboardPath,
		RedirectHome:      HomePath,
	}
	for d, want := range targets {
		if got := d.Target(); got != want {
			t.Fatalf("decision %v: expected target %q, got %q", d, want, got)
		}
	}
}
