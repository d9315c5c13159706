package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/agrunetcore/farmhub/internal/guard"
	"github.com/agrunetcore/farmhub/internal/services"
	"github.com/agrunetcore/farmhub/internal/session"
	"github.com/agrunetcore/farmhub/internal/store"
	"github.com/agrunetcore/farmhub/types"
)

const defaultTokenTTL = 24 * time.Hour
const maxAvatarBytes = 4 << 20

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// AuthHandler provides sign-up, sign-in, and profile endpoints backed by
// the session store.
type AuthHandler struct {
	userService *services.UserService
	sessions    *session.Store
	secret      []byte
	tokenTTL    time.Duration
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, sessions *session.Store, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
		secret:      []byte(jwtSecret),
		tokenTTL:    defaultTokenTTL,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/signup", handler.SignUp)
	r.Post("/signin", handler.SignIn)
	r.With(handler.RequireSession).Post("/signout", handler.SignOut)
	r.With(handler.RequireSession).Get("/me", handler.Me)
	r.With(handler.RequireSession).Post("/me/avatar", handler.UploadAvatar)
}

// RequireSession resolves the bearer token to an active session, refreshes
// its activity timestamp, and injects it into the request context. Absent
// or expired sessions answer 401 with the guard's redirect target; expiry
// is resolved silently as a redirect, never reported as an error state.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			h.redirectSignIn(w, r)
			return
		}

		if _, err := parseTokenSubject(token, h.secret); err != nil {
			h.redirectSignIn(w, r)
			return
		}

		sess, ok := h.sessions.Restore(r.Context(), token)
		if !ok {
			h.redirectSignIn(w, r)
			return
		}

		// Every authenticated request counts as tracked activity.
		_ = h.sessions.Touch(r.Context(), token)

		ctx := contextWithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSuperAdmin layers the stricter dashboard gate on top of
// RequireSession.
func (h *AuthHandler) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromContext(r.Context())
		if err != nil {
			h.redirectSignIn(w, r)
			return
		}
		if decision := guard.DecideDashboard(session.StateAuthenticated, sess); decision != guard.Allow {
			writeGuardError(w, http.StatusForbidden, "superadmin access required", decision.Target())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AuthHandler) redirectSignIn(w http.ResponseWriter, r *http.Request) {
	decision := guard.Decide(session.StateUnauthenticated, r.URL.Path, nil)
	writeGuardError(w, http.StatusUnauthorized, "unauthorized", decision.Target())
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// SignUp creates an account in the simulated registered-user list and
// begins a session.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if len(req.Name) < 3 {
		writeError(w, http.StatusBadRequest, "Name must be at least 3 characters")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "Please enter a valid email")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	user, err := h.userService.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	token, err := h.beginSession(r, user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// SignIn verifies credentials and begins a session.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := h.beginSession(r, user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// SignOut ends the session and points the client at the sign-in view.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFromContext(r.Context())
	if err != nil {
		h.redirectSignIn(w, r)
		return
	}
	if err := h.sessions.End(r.Context(), sess.Token); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to end session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": guard.SignInPath})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFromContext(r.Context())
	if err != nil {
		h.redirectSignIn(w, r)
		return
	}
	writeJSON(w, http.StatusOK, sess.User)
}

// UploadAvatar stores a new profile image for the current user.
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFromContext(r.Context())
	if err != nil {
		h.redirectSignIn(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	if header.Size > maxAvatarBytes {
		writeError(w, http.StatusBadRequest, "avatar file too large")
		return
	}

	user, err := h.userService.SaveAvatar(
		r.Context(),
		sess.User.ID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save avatar")
		return
	}

	// Keep the live session's profile in step with the stored one.
	_ = h.sessions.End(r.Context(), sess.Token)
	if _, err := h.sessions.Begin(r.Context(), user, sess.Token); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to refresh session")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) beginSession(r *http.Request, user types.User) (string, error) {
	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		return "", err
	}
	if _, err := h.sessions.Begin(r.Context(), user, token); err != nil {
		return "", err
	}
	return token, nil
}

func issueToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
