package domain

import (
	"fmt"
	"time"
)

// ChannelLog identifies confirmations written to the structured log
const ChannelLog = "log"

// ApplicationEvent is the application-submitted message consumed from RabbitMQ
type ApplicationEvent struct {
	EventID       string    `json:"event_id"`
	ApplicationID int64     `json:"application_id"`
	JobID         int64     `json:"job_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	AppliedAt     time.Time `json:"applied_at"`
}

// Validate rejects events that can never be processed
func (e ApplicationEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: missing event_id", ErrInvalidEvent)
	}
	if e.ApplicationID <= 0 {
		return fmt.Errorf("%w: application_id must be positive", ErrInvalidEvent)
	}
	return nil
}

// Confirmation is what the candidate is told about a stored application
type Confirmation struct {
	ApplicationID int64
	JobID         int64
	JobTitle      string
	Company       string
	FullName      string
	Email         string
	AppliedAt     time.Time
}

// Notification records that a confirmation went out
type Notification struct {
	ApplicationID int64
	EventID       string
	Channel       string
	SentAt        time.Time
}
