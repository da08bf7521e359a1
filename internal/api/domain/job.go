package domain

import "time"

// FilterAll is the "no constraint" marker for a filter field
const FilterAll = "All"

// Known filter values offered to clients. The store does not enforce them:
// an unknown value just matches nothing.
var (
	Categories       = []string{"Engineering", "Design", "Management", "Marketing"}
	Locations        = []string{"Remote", "New York, NY", "San Francisco, CA", "Austin, TX", "Seattle, WA"}
	ExperienceLevels = []string{"Entry-Level", "Mid-Level", "Senior"}
)

// JobPosting is a single advertised job opening
type JobPosting struct {
	ID              int64
	Title           string
	Company         string
	Location        string
	Category        string
	ExperienceLevel string
	Salary          *string
	Description     *string
	PostedAt        time.Time
}

// FilterCriteria narrows a job listing. Each field is either FilterAll, the
// empty string (also no constraint) or an exact, case-sensitive value.
type FilterCriteria struct {
	Category   string
	Location   string
	Experience string
}

// AllJobs returns criteria with every field at the sentinel
func AllJobs() FilterCriteria {
	return FilterCriteria{Category: FilterAll, Location: FilterAll, Experience: FilterAll}
}

// IsSet reports whether v constrains a listing
func IsSet(v string) bool {
	return v != "" && v != FilterAll
}

// Page bounds a listing. A zero Limit means no bound.
type Page struct {
	Limit int
	After *Cursor
}

// Cursor is a keyset position in (posted_at DESC, id DESC) order
type Cursor struct {
	PostedAt time.Time
	ID       int64
}
