package dto

import (
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
)

type ListJobsRequest struct {
	Category   string `form:"category"`
	Location   string `form:"location"`
	Experience string `form:"experience"`
	Limit      int    `form:"limit" binding:"omitempty,min=1"`
	Cursor     string `form:"cursor"`
}

// Filter converts the query parameters into listing criteria
func (r ListJobsRequest) Filter() domain.FilterCriteria {
	return domain.FilterCriteria{
		Category:   r.Category,
		Location:   r.Location,
		Experience: r.Experience,
	}
}

type JobDTO struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Category        string    `json:"category"`
	ExperienceLevel string    `json:"experience_level"`
	Salary          *string   `json:"salary"`
	Description     *string   `json:"description"`
	PostedAt        time.Time `json:"posted_at"`
}

func NewJobDTO(job domain.JobPosting) JobDTO {
	return JobDTO{
		ID:              job.ID,
		Title:           job.Title,
		Company:         job.Company,
		Location:        job.Location,
		Category:        job.Category,
		ExperienceLevel: job.ExperienceLevel,
		Salary:          job.Salary,
		Description:     job.Description,
		PostedAt:        job.PostedAt,
	}
}

// ToDomain is used by API clients decoding a listing
func (d JobDTO) ToDomain() domain.JobPosting {
	return domain.JobPosting{
		ID:              d.ID,
		Title:           d.Title,
		Company:         d.Company,
		Location:        d.Location,
		Category:        d.Category,
		ExperienceLevel: d.ExperienceLevel,
		Salary:          d.Salary,
		Description:     d.Description,
		PostedAt:        d.PostedAt,
	}
}

type FiltersResponse struct {
	Categories       []string `json:"categories"`
	Locations        []string `json:"locations"`
	ExperienceLevels []string `json:"experience_levels"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
