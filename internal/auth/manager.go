// Package auth owns the session lifecycle: the register → verify-otp →
// login sequence, session persistence to the local store, and the
// startup restore that purges anything stale.
package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopfront/shopfront/internal/api"
	"github.com/shopfront/shopfront/internal/domain"
	"github.com/shopfront/shopfront/internal/localstore"
	"github.com/shopfront/shopfront/internal/ops"
)

// Backend is the auth slice of the API client.
type Backend interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Register(ctx context.Context, name, email, password string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ResendOTP(ctx context.Context, email string) (string, error)
}

type Manager struct {
	mu      sync.Mutex
	backend Backend
	store   localstore.Store
	tracker *ops.Tracker
	log     *slog.Logger

	session     domain.Session
	otpVerified bool
}

func NewManager(backend Backend, store localstore.Store, tracker *ops.Tracker, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		backend: backend,
		store:   store,
		tracker: tracker,
		log:     log,
	}
}

// Initialize runs once at application start. It restores the persisted
// session; on any failure it purges token and user from the local
// store and leaves the session logged out. Nothing propagates —
// callers just see an empty session.
func (m *Manager) Initialize() {
	sess := localstore.LoadSession(m.store)
	if !sess.LoggedIn() {
		localstore.ClearSession(m.store)
		m.log.Debug("no restorable session, starting logged out")
		return
	}
	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()
	m.log.Debug("session restored", "user", sess.UserID())
}

// Login exchanges credentials for a session. Success persists both
// token and user; rejection clears any partial session along with the
// persisted copies.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	return m.tracker.Track(ops.Login, func() error {
		sess, err := m.backend.Login(ctx, email, password)
		if err != nil {
			m.mu.Lock()
			m.session = domain.Session{}
			m.mu.Unlock()
			localstore.ClearSession(m.store)
			return err
		}

		m.mu.Lock()
		m.session = sess
		m.mu.Unlock()
		if err := localstore.SaveSession(m.store, sess); err != nil {
			m.log.Warn("session persisted to memory only", "error", err)
		}
		m.log.Info("logged in", "user", sess.UserID())
		return nil
	})
}

// Register creates an unverified account and returns the backend's
// message (the OTP is mailed out of band).
func (m *Manager) Register(ctx context.Context, name, email, password string) (string, error) {
	var message string
	err := m.tracker.Track(ops.Register, func() error {
		var err error
		message, err = m.backend.Register(ctx, name, email, password)
		return err
	})
	return message, err
}

// VerifyOTP confirms the registration OTP; success gates the login
// step of the flow.
func (m *Manager) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	var message string
	err := m.tracker.Track(ops.VerifyOTP, func() error {
		var err error
		message, err = m.backend.VerifyOTP(ctx, email, otp)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.otpVerified = true
		m.mu.Unlock()
		return nil
	})
	return message, err
}

// ResendOTP requests a fresh code for an unverified account.
func (m *Manager) ResendOTP(ctx context.Context, email string) (string, error) {
	var message string
	err := m.tracker.Track(ops.ResendOTP, func() error {
		var err error
		message, err = m.backend.ResendOTP(ctx, email)
		return err
	})
	return message, err
}

// Logout destroys the session and its persisted copies.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.session = domain.Session{}
	m.otpVerified = false
	m.mu.Unlock()
	localstore.ClearSession(m.store)
	m.log.Info("logged out")
}

// InvalidateOn destroys the session when err reports an invalid or
// expired token, so a stale persisted token cannot keep the client
// looking logged in past its first rejected call.
func (m *Manager) InvalidateOn(err error) {
	if api.IsUnauthorized(err) {
		m.log.Debug("token rejected by backend, clearing session")
		m.Logout()
	}
}

// Session returns the current session snapshot.
func (m *Manager) Session() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *Manager) OTPVerified() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otpVerified
}
