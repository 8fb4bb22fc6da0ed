package session

// Snapshot is the persistable part of a session. Backend health is runtime
// state and is never persisted.
type Snapshot struct {
	BackendJWT      string `json:"backend_jwt"`
	RefreshJWT      string `json:"refresh_jwt"`
	RenewJWTBefore  int64  `json:"renew_jwt_before"`
	UserEmail       string `json:"user_email"`
	UserLogin       string `json:"user_login"`
	User2faSize     int    `json:"user_2fa_size"`
	User2faType     string `json:"user_2fa_type"`
	UserAdmin       bool   `json:"user_admin"`
	GroupLocalAdmin bool   `json:"group_local_admin"`
	GroupAdmin      bool   `json:"group_admin"`
}

// Snapshot exports the current session
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		BackendJWT:      s.backendJWT,
		RefreshJWT:      s.refreshJWT,
		RenewJWTBefore:  s.renewJWTBefore,
		UserEmail:       s.userEmail,
		UserLogin:       s.userLogin,
		User2faSize:     s.user2faSize,
		User2faType:     s.user2faType,
		UserAdmin:       s.userAdmin,
		GroupLocalAdmin: s.groupLocalAdmin,
		GroupAdmin:      s.groupAdmin,
	}
}

// Restore replaces the session with snap
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backendJWT = snap.BackendJWT
	s.refreshJWT = snap.RefreshJWT
	s.renewJWTBefore = snap.RenewJWTBefore
	s.userEmail = snap.UserEmail
	s.userLogin = snap.UserLogin
	s.user2faSize = snap.User2faSize
	s.user2faType = snap.User2faType
	s.userAdmin = snap.UserAdmin
	s.groupLocalAdmin = snap.GroupLocalAdmin
	s.groupAdmin = snap.GroupAdmin
}
