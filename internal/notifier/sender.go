package notifier

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/notifier/domain"
)

// LogSender writes confirmations to the structured log
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With(slog.String("component", "confirmation"))}
}

func (s *LogSender) Channel() string { return domain.ChannelLog }

func (s *LogSender) Send(ctx context.Context, c domain.Confirmation) error {
	s.logger.InfoContext(ctx, "Application received",
		slog.String("to", c.Email),
		slog.String("name", c.FullName),
		slog.String("job_title", c.JobTitle),
		slog.String("company", c.Company),
		slog.Int64("application_id", c.ApplicationID),
		slog.Time("applied_at", c.AppliedAt),
	)
	return nil
}
