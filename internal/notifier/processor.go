package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/notifier/domain"
)

// processEvent sends the confirmation for one application at most once per
// recorded notification. Shutdown does not cut an event short; only the job
// timeout does.
func (w *Worker) processEvent(ctx context.Context, event domain.ApplicationEvent) error {
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.jobTimeout)
	defer cancel()

	notified, err := w.store.IsNotified(jobCtx, event.ApplicationID)
	if err != nil {
		return domain.NewRetryableError(err)
	}
	if notified {
		w.logger.Info("Application already notified, skipping",
			slog.Int64("application_id", event.ApplicationID),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	confirmation, err := w.store.GetConfirmation(jobCtx, event.ApplicationID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return err
		}
		return domain.NewRetryableError(err)
	}

	if err := w.sender.Send(jobCtx, *confirmation); err != nil {
		return domain.NewRetryableError(fmt.Errorf("failed to send confirmation: %w", err))
	}

	_, err = w.store.RecordNotification(jobCtx, domain.Notification{
		ApplicationID: event.ApplicationID,
		EventID:       event.EventID,
		Channel:       w.sender.Channel(),
		SentAt:        w.now().UTC(),
	})
	if err != nil {
		return domain.NewRetryableError(err)
	}

	w.logger.Info("Confirmation sent",
		slog.Int64("application_id", event.ApplicationID),
		slog.Int64("job_id", confirmation.JobID),
		slog.String("channel", w.sender.Channel()),
	)

	return nil
}
