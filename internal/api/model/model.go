package model

import (
	"database/sql"
	"time"
)

type Job struct {
	ID              int64          `db:"id"`
	Title           string         `db:"title"`
	Company         string         `db:"company"`
	Location        string         `db:"location"`
	Category        string         `db:"category"`
	ExperienceLevel string         `db:"experience_level"`
	Salary          sql.NullString `db:"salary"`
	Description     sql.NullString `db:"description"`
	PostedAt        time.Time      `db:"posted_at"`
}

type Application struct {
	ID          int64          `db:"id"`
	JobID       int64          `db:"job_id"`
	FullName    string         `db:"full_name"`
	Email       string         `db:"email"`
	ResumeURL   sql.NullString `db:"resume_url"`
	CoverLetter sql.NullString `db:"cover_letter"`
	AppliedAt   time.Time      `db:"applied_at"`
}
