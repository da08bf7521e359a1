package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// Apply handles POST /api/apply
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	app, err := h.applications.Submit(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, err, "Failed to submit application")
		return
	}

	h.logger.Debug("Application accepted", slog.Int64("application_id", app.ID))

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Application submitted successfully"})
}
