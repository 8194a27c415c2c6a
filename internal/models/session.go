package models

import "time"

// Admin is a staff credential record. PasswordHash is a bcrypt hash.
type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is an authenticated staff session held in Redis.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired checks if session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// DashboardStats are the headline counts shown to staff.
type DashboardStats struct {
	TotalJobs         int64     `json:"totalJobs"`
	TotalApplications int64     `json:"totalApplications"`
	GeneratedAt       time.Time `json:"generatedAt"`
}
