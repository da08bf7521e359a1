package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// ListJobs handles GET /api/jobs
// Absent or "All" query parameters mean no filter. Without limit the full
// matching list is returned.
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Warn("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid cursor"})
		return
	}

	page, err := h.jobs.ListJobs(c.Request.Context(), req.Filter(), domain.Page{
		Limit: req.Limit,
		After: cursor,
	})
	if err != nil {
		respondError(c, err, "Failed to fetch jobs")
		return
	}

	jobs := make([]dto.JobDTO, len(page.Jobs))
	for i, job := range page.Jobs {
		jobs[i] = dto.NewJobDTO(job)
	}

	if page.Next != nil {
		c.Header(NextCursorHeader, EncodeJobCursor(page.Next))
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJob handles GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "id must be an integer"})
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch job")
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(*job))
}

// Filters handles GET /api/filters
func (h *JobHandler) Filters(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FiltersResponse{
		Categories:       withAll(domain.Categories),
		Locations:        withAll(domain.Locations),
		ExperienceLevels: withAll(domain.ExperienceLevels),
	})
}

func withAll(values []string) []string {
	return append([]string{domain.FilterAll}, values...)
}
