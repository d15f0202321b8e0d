package services

import (
	"context"
	"log"
	"sync"

	"InsureCost/models"
	"InsureCost/repositories"
	"InsureCost/utils"

	"github.com/pkg/errors"
)

// CookieKeeper holds the backend cookies of one tab. *repositories.APIClient
// implements it.
type CookieKeeper interface {
	Cookies() []models.StoredCookie
	RestoreCookies(cookies []models.StoredCookie)
	ClearCookies()
}

// SessionManager authenticates one tab against the backend and keeps the
// resulting session in memory and in session storage.
type SessionManager struct {
	auth    repositories.AuthRepository
	cookies CookieKeeper
	store   repositories.SessionRepository
	tabID   string
	view    *ViewStore

	mu      sync.RWMutex
	session *models.Session
}

func NewSessionManager(
	auth repositories.AuthRepository,
	cookies CookieKeeper,
	store repositories.SessionRepository,
	tabID string,
	view *ViewStore,
) *SessionManager {
	return &SessionManager{auth: auth, cookies: cookies, store: store, tabID: tabID, view: view}
}

// Current returns a copy of the open session, or nil.
func (m *SessionManager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	session := *m.session
	return &session
}

// Login checks the credentials locally, then against the backend. Failures
// are shown inline on the login form and returned.
func (m *SessionManager) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if err := utils.ValidateLoginForm(username, password); err != nil {
		m.loginFailed(err.Error())
		return nil, err
	}

	m.view.Update(func(v *models.ViewState) bool {
		v.Stage = models.StageLoggingIn
		v.Login.Error = ""
		return true
	})

	resp, err := m.auth.Login(ctx, username, password)
	if err != nil {
		log.Printf("Login error: %v", err)
		m.loginFailed(loginErrorMessage(err))
		return nil, err
	}

	session := resp.Session()
	m.mu.Lock()
	m.session = &session
	m.mu.Unlock()

	if m.store != nil {
		stored := models.StoredSession{Session: session, Cookies: m.cookies.Cookies()}
		if err := m.store.Save(ctx, m.tabID, stored); err != nil {
			log.Printf("Failed to store session for tab %s: %v", m.tabID, err)
		}
	}
	return &session, nil
}

// Restore brings back the session stored for this tab, if any, together with
// the backend cookies that belong to it.
func (m *SessionManager) Restore(ctx context.Context) (*models.Session, error) {
	if m.store == nil {
		return nil, nil
	}
	stored, err := m.store.Load(ctx, m.tabID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}

	m.cookies.RestoreCookies(stored.Cookies)
	session := stored.Session
	m.mu.Lock()
	m.session = &session
	m.mu.Unlock()
	return &session, nil
}

// Logout revokes the backend session on a best-effort basis. The local
// session, the stored copy and the backend cookies are dropped whatever the
// backend answers. The revoke error is returned for logging only.
func (m *SessionManager) Logout(ctx context.Context) error {
	revokeErr := m.auth.Logout(ctx)
	if revokeErr != nil {
		log.Printf("Logout error: %v", revokeErr)
	}

	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Clear(ctx, m.tabID); err != nil {
			log.Printf("Failed to clear session for tab %s: %v", m.tabID, err)
		}
	}
	m.cookies.ClearCookies()
	return revokeErr
}

func (m *SessionManager) loginFailed(message string) {
	m.view.Update(func(v *models.ViewState) bool {
		v.Stage = models.StageLoggedOut
		v.Login.Error = message
		return true
	})
}

func loginErrorMessage(err error) string {
	var authErr *models.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var netErr *models.NetworkError
	if errors.As(err, &netErr) && !netErr.Transport() {
		if netErr.Message != "" {
			return netErr.Message
		}
		return "Invalid credentials"
	}
	return connectionErrorMessage
}

// userBadge is the navbar identity block of a session.
func userBadge(session models.Session) *models.UserBadge {
	return &models.UserBadge{
		Initials:  utils.Initials(session.Username),
		Name:      utils.Capitalize(session.Username),
		RoleText:  session.Role.DisplayName(),
		LoginTime: session.LoginTime,
	}
}
