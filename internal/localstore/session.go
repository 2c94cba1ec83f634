package localstore

import (
	"encoding/json"
	"strings"

	"github.com/shopfront/shopfront/internal/domain"
)

// Token returns the persisted bearer token, or "" when none is stored.
func Token(s Store) string {
	raw, err := s.Get(KeyToken)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// LoadSession restores the persisted session. A missing or unparsable
// user, or a missing token, yields the zero (logged-out) session.
func LoadSession(s Store) domain.Session {
	token := Token(s)
	if token == "" {
		return domain.Session{}
	}

	raw, err := s.Get(KeyUser)
	if err != nil {
		return domain.Session{}
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil || user.ID == "" {
		return domain.Session{}
	}
	return domain.Session{User: &user, Token: token}
}

// SaveSession persists token and user.
func SaveSession(s Store, sess domain.Session) error {
	if err := s.Set(KeyToken, []byte(sess.Token)); err != nil {
		return err
	}
	data, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	return s.Set(KeyUser, data)
}

// ClearSession removes both token and user. Used on logout and
// whenever session restore fails, so stale local data can never make
// the client look logged in.
func ClearSession(s Store) {
	_ = s.Delete(KeyToken)
	_ = s.Delete(KeyUser)
}
