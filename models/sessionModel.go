package models

import (
	"strings"
	"time"
)

// Role is the dashboard role granted by the backend on login.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole maps the backend role name onto a dashboard role. The backend
// reports plain users as "user"; anything unknown is treated as a patient.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin
	case "doctor":
		return RoleDoctor
	default:
		return RolePatient
	}
}

// DisplayName returns the label shown in the user badge.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleDoctor:
		return "Doctor"
	default:
		return "Patient"
	}
}

// Session is the authenticated identity held for the lifetime of a browser tab.
type Session struct {
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	LoginTime string `json:"login_time"`
}

// IsAdmin reports whether the session may retrain the model.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the success body of POST /api/login.
type LoginResponse struct {
	Success   bool   `json:"success"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	LoginTime string `json:"login_time"`
	DBStatus  string `json:"db_status"`
}

// Session converts the login response into a dashboard session.
func (r LoginResponse) Session() Session {
	return Session{
		Username:  r.Username,
		Role:      ParseRole(r.Role),
		LoginTime: r.LoginTime,
	}
}

// StoredCookie is a backend cookie kept alongside the session so a restored
// tab can keep talking to the backend without logging in again.
type StoredCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StoredSession is the sealed payload written to session storage.
type StoredSession struct {
	Session Session        `json:"session"`
	Cookies []StoredCookie `json:"cookies"`
	Expiry  time.Time      `json:"expiry"`
}
