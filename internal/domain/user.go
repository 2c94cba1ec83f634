package domain

// User is the profile of an authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the auth state of the client: the current user plus the
// opaque bearer token sent with authenticated requests. An empty
// session means "not logged in" regardless of what is on disk.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (s Session) LoggedIn() bool {
	return s.User != nil && s.Token != ""
}

// UserID returns the current user's id, or "" when logged out.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}
