package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/model"
)

// DefaultJobs is the catalogue loaded into an empty store
var DefaultJobs = []model.Job{
	seedJob("Senior Frontend Engineer", "TechFlow", "Remote", "Engineering", "Senior", "$140k - $180k", "Lead the development of our core React applications."),
	seedJob("Junior UI Designer", "CreativeCo", "New York, NY", "Design", "Entry-Level", "$70k - $90k", "Help us craft beautiful user interfaces for our clients."),
	seedJob("Product Manager", "ScaleUp", "San Francisco, CA", "Management", "Mid-Level", "$120k - $150k", "Drive product strategy and execution for our growth team."),
	seedJob("Full Stack Developer", "DataViz", "Remote", "Engineering", "Mid-Level", "$110k - $140k", "Build end-to-end features using React and Node.js."),
	seedJob("Marketing Specialist", "BrandBoost", "Austin, TX", "Marketing", "Entry-Level", "$60k - $80k", "Execute digital marketing campaigns and analyze performance."),
	seedJob("Staff Software Engineer", "CloudScale", "Remote", "Engineering", "Senior", "$180k - $220k", "Architect scalable cloud infrastructure and mentor junior engineers."),
	seedJob("UX Researcher", "UserFirst", "Seattle, WA", "Design", "Mid-Level", "$100k - $130k", "Conduct user research to inform product design decisions."),
	seedJob("DevOps Engineer", "OpsMaster", "Austin, TX", "Engineering", "Mid-Level", "$130k - $160k", "Manage CI/CD pipelines and cloud infrastructure."),
}

func seedJob(title, company, location, category, level, salary, description string) model.Job {
	return model.Job{
		Title:           title,
		Company:         company,
		Location:        location,
		Category:        category,
		ExperienceLevel: level,
		Salary:          sql.NullString{String: salary, Valid: true},
		Description:     sql.NullString{String: description, Valid: true},
	}
}

// SeedJobs inserts jobs in one transaction when the jobs table is empty.
// Every seeded row shares the same posted_at. It returns the number of rows
// inserted.
func (s *Storage) SeedJobs(ctx context.Context, jobs []model.Job) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM jobs`); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	postedAt := time.Now().UTC().Truncate(time.Microsecond)
	for i := range jobs {
		job := jobs[i]
		job.PostedAt = postedAt
		if err := insertJob(ctx, tx, &job); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	return len(jobs), nil
}
