package domain

import "time"

// Application is a candidate's submission against a JobPosting
type Application struct {
	ID          int64
	JobID       int64
	FullName    string
	Email       string
	CoverLetter *string
	ResumeURL   *string
	AppliedAt   time.Time
}

// ApplicationInput is what a candidate submits. JobID is a pointer so that an
// absent or null id can be told apart from a present one.
type ApplicationInput struct {
	JobID       *int64
	FullName    string
	Email       string
	CoverLetter string
	ResumeURL   string
}

// ApplicationSubmitted is published after an application is stored
type ApplicationSubmitted struct {
	EventID       string    `json:"event_id"`
	ApplicationID int64     `json:"application_id"`
	JobID         int64     `json:"job_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	AppliedAt     time.Time `json:"applied_at"`
}
