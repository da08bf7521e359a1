package dto

import "github.com/cuongbtq/jobboard/internal/api/domain"

// ApplyRequest is the POST /api/apply body. Required fields are checked by
// the application service so that the first missing one is reported.
type ApplyRequest struct {
	JobID       *int64 `json:"jobId"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	CoverLetter string `json:"coverLetter"`
	ResumeURL   string `json:"resumeUrl,omitempty"`
}

func (r ApplyRequest) ToInput() domain.ApplicationInput {
	return domain.ApplicationInput{
		JobID:       r.JobID,
		FullName:    r.FullName,
		Email:       r.Email,
		CoverLetter: r.CoverLetter,
		ResumeURL:   r.ResumeURL,
	}
}
