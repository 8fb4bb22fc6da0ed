package session

import (
	"log/slog"
	"sync"
	"time"
)

// RenewLead is how long before token expiry renewal is scheduled
const RenewLead = 15 * time.Minute

// Grant carries the tokens and identity returned by a successful login,
// second factor upgrade or renewal.
type Grant struct {
	AccessToken  string
	RefreshToken string
	Email        string
	Login        string
	TwoFASize    int
	TwoFAType    string
}

// Store holds the client session: tokens, identity, admin flags and the
// backend health flag. One instance is shared by the gateway and the domain
// clients of an application.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	log *slog.Logger

	backendUp       bool
	backendJWT      string
	refreshJWT      string
	renewJWTBefore  int64 // ms since epoch, 0 when no renewal is tracked
	userEmail       string
	userLogin       string
	user2faSize     int
	user2faType     string
	userAdmin       bool
	groupLocalAdmin bool
	groupAdmin      bool
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates an empty session with the backend assumed up
func New(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		log:       slog.Default(),
		backendUp: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BackendUp returns the last known backend reachability
func (s *Store) BackendUp() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backendUp
}

// SetBackendUp records backend reachability
func (s *Store) SetBackendUp(up bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backendUp != up {
		s.log.Info("backend_health_changed", slog.Bool("up", up))
	}
	s.backendUp = up
}

// BackendJWT returns the access token, empty when logged out
func (s *Store) BackendJWT() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backendJWT
}

// RefreshJWT returns the renewal token
func (s *Store) RefreshJWT() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshJWT
}

// RenewJWTBefore returns the renewal deadline in ms since epoch
func (s *Store) RenewJWTBefore() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renewJWTBefore
}

func (s *Store) UserEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userEmail
}

func (s *Store) UserLogin() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLogin
}

func (s *Store) User2faSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user2faSize
}

func (s *Store) User2faType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user2faType
}

func (s *Store) UserAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userAdmin
}

func (s *Store) GroupLocalAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groupLocalAdmin
}

func (s *Store) GroupAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groupAdmin
}

// IsJWTExpired reports whether there is no usable session: no renewal is
// tracked, or the access token expiry has passed.
func (s *Store) IsJWTExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.renewJWTBefore <= 0 {
		return true
	}
	expiry := s.renewJWTBefore + RenewLead.Milliseconds()
	return s.now().UnixMilli() >= expiry
}

// IsJWTToBeRenewed reports whether the access token is due for renewal
func (s *Store) IsJWTToBeRenewed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.renewJWTBefore <= 0 {
		return false
	}
	return s.now().Add(RenewLead).UnixMilli() >= s.renewJWTBefore
}

// ExpiresIn returns the time left before the access token expires, 0 when
// expired or absent.
func (s *Store) ExpiresIn() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.renewJWTBefore <= 0 {
		return 0
	}
	left := time.Duration(s.renewJWTBefore+RenewLead.Milliseconds()-s.now().UnixMilli()) * time.Millisecond
	if left < 0 {
		return 0
	}
	return left
}

// Apply stores a grant and derives the renewal deadline and admin flags from
// the access token claims. Empty grant fields keep their previous value so a
// renewal that only returns tokens leaves the identity alone.
//
// The claims are read without verification. When they cannot be decoded the
// tokens are still stored but the session is treated as expired.
func (s *Store) Apply(g Grant) error {
	claims, err := ParseClaims(g.AccessToken)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.backendJWT = g.AccessToken
	if g.RefreshToken != "" {
		s.refreshJWT = g.RefreshToken
	}
	if g.Email != "" {
		s.userEmail = g.Email
	}
	if g.Login != "" {
		s.userLogin = g.Login
	}
	if g.TwoFAType != "" {
		s.user2faType = g.TwoFAType
		s.user2faSize = g.TwoFASize
	}

	if err != nil {
		s.renewJWTBefore = 0
		s.userAdmin, s.groupAdmin, s.groupLocalAdmin = false, false, false
		s.log.Warn("session_token_undecodable", slog.String("err", err.Error()))
		return err
	}

	s.renewJWTBefore = claims.ExpiresAt.UnixMilli() - RenewLead.Milliseconds()
	s.userAdmin = claims.HasAnyRole(RoleUserAdmin, RoleGodAdmin)
	s.groupAdmin = claims.HasAnyRole(RoleGroupAdmin, RoleGodAdmin)
	s.groupLocalAdmin = claims.HasAnyRole(RoleGroupLocalAdmin)
	return nil
}

// Clear drops tokens and identity. Backend health is not session scoped and
// is kept.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backendJWT = ""
	s.refreshJWT = ""
	s.renewJWTBefore = 0
	s.userEmail = ""
	s.userLogin = ""
	s.user2faSize = 0
	s.user2faType = ""
	s.userAdmin = false
	s.groupLocalAdmin = false
	s.groupAdmin = false
}
