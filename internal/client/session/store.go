// Package session manages the authenticated identity of the client process:
// whether a login persists across restarts ("remember me") or only for the
// current session, and the single shared forced-logout path every component
// escalates authorization failures to.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/eduterm/internal/client/models"
	"github.com/dmitrijs2005/eduterm/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/eduterm/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Navigator is where a forced logout sends the user. In the terminal client
// this drops back to the anonymous prompt; a different front-end would
// navigate to its login view.
type Navigator interface {
	NavigateToLogin()
}

// Store owns the auth session state. Invariants:
//   - authenticated implies a non-empty token;
//   - no operation leaves a token set while the state is anonymous;
//   - rememberMe=false implies the marker exists for the lifetime of the
//     session (written when the login is established).
//
// All mutation goes through Store methods; collaborators read token/user via
// accessors and never touch fields directly.
type Store struct {
	repo   credentials.Repository
	marker Marker
	nav    Navigator
	log    logging.Logger

	mu            sync.Mutex
	token         string
	user          *models.User
	authenticated bool
	rememberMe    bool
}

func NewStore(repo credentials.Repository, marker Marker, nav Navigator, log logging.Logger) *Store {
	return &Store{
		repo:       repo,
		marker:     marker,
		nav:        nav,
		log:        log.With("component", "session"),
		rememberMe: true,
	}
}

// Bootstrap runs once at startup and decides whether the persisted
// credential is still honored. Purely local: no network call is made.
//
// The credential is discarded when the login was session-only and the
// marker is gone (the session ended), or when the token is a JWT whose
// expiry has passed. Otherwise the persisted state is restored untouched.
func (s *Store) Bootstrap(ctx context.Context) error {
	rec, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	s.mu.Lock()
	s.authenticated = rec.IsAuthenticated && rec.Token != ""
	if s.authenticated {
		s.token = rec.Token
		s.user = rec.User
	}
	s.rememberMe = rec.RememberMe
	expired := s.authenticated && tokenExpired(rec.Token)
	sessionEnded := s.authenticated && !rec.RememberMe && !s.marker.Has()
	s.mu.Unlock()

	if sessionEnded {
		s.log.Info(ctx, "session marker absent, discarding session-only login")
		return s.Logout(ctx)
	}
	if expired {
		s.log.Info(ctx, "persisted token expired, discarding")
		return s.Logout(ctx)
	}
	return nil
}

// SetRememberMe records the user's choice. Called at login time, before the
// credential is established and persisted.
func (s *Store) SetRememberMe(value bool) {
	s.mu.Lock()
	s.rememberMe = value
	s.mu.Unlock()
}

// Establish stores the credential after a successful login or registration,
// persists the record and commits the session choice (writing the marker
// for session-only logins).
func (s *Store) Establish(ctx context.Context, token string, user *models.User) error {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.authenticated = token != ""
	rememberMe := s.rememberMe
	s.mu.Unlock()

	s.commitSessionChoice(rememberMe)
	return s.persist(ctx)
}

// commitSessionChoice writes the marker for session-only logins. Remembered
// logins rely on normal persistence and get no marker.
func (s *Store) commitSessionChoice(rememberMe bool) {
	if !rememberMe {
		s.marker.Set()
	}
}

// UpdateUser replaces the profile snapshot, leaving the token untouched.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return s.persist(ctx)
}

// Logout resets the session to its anonymous state and clears the marker.
// Idempotent: logging out while already anonymous is a no-op that still
// succeeds.
func (s *Store) Logout(ctx context.Context) error {
	s.reset()
	s.marker.Clear()
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	return nil
}

// ForceLogout is the shared path for authorization failures observed by any
// component. Safe to call concurrently from multiple call sites: the state
// transition is guarded, so exactly one caller performs the navigation per
// authenticated episode; the rest are no-ops.
func (s *Store) ForceLogout(ctx context.Context) {
	if !s.reset() {
		return
	}
	s.marker.Clear()
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear persisted credentials", "error", err)
	}
	s.log.Info(ctx, "authorization failure, session terminated")
	s.nav.NavigateToLogin()
}

// reset clears all fields and reports whether the store was authenticated.
func (s *Store) reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasAuthenticated := s.authenticated
	s.token = ""
	s.user = nil
	s.authenticated = false
	s.rememberMe = true
	return wasAuthenticated
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	rec := &credentials.Record{
		Token:           s.token,
		IsAuthenticated: s.authenticated,
		User:            s.user,
		RememberMe:      s.rememberMe,
	}
	s.mu.Unlock()
	return s.repo.Save(ctx, rec)
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) RememberMe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rememberMe
}

// User returns a copy of the profile snapshot, or nil when anonymous.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque (non-JWT) tokens and tokens without an exp claim are never
// considered expired locally; the server remains the authority for those.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
