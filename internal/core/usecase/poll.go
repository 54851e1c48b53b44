package usecase

import (
	"context"
	"time"

	"github.com/kirillkom/docstream/internal/core/domain"
	"github.com/kirillkom/docstream/internal/core/ports"
)

// PollNotificationsUseCase implements the long-poll read over the shared log.
// There is no in-process wake signal: a record appended by another instance is
// picked up by re-querying the store on a short interval, bounded by the
// requested timeout and the caller's context deadline.
type PollNotificationsUseCase struct {
	log        ports.NotificationLog
	interval   time.Duration
	maxTimeout time.Duration
}

func NewPollNotificationsUseCase(log ports.NotificationLog, interval, maxTimeout time.Duration) *PollNotificationsUseCase {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if maxTimeout <= 0 {
		maxTimeout = 25 * time.Second
	}
	return &PollNotificationsUseCase{
		log:        log,
		interval:   interval,
		maxTimeout: maxTimeout,
	}
}

// Poll returns all records with id > sinceID, waiting up to timeout for the
// first one to arrive. An empty result after the full wait is a valid
// response, not an error. The wait is shortened to fit the context deadline
// so the handler always answers before the platform kills the request.
func (uc *PollNotificationsUseCase) Poll(ctx context.Context, sinceID int64, timeout time.Duration) ([]domain.Notification, error) {
	if timeout <= 0 || timeout > uc.maxTimeout {
		timeout = uc.maxTimeout
	}
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	records, err := uc.log.ReadSince(ctx, sinceID)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return records, nil
	}

	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return []domain.Notification{}, nil
		}

		wait := uc.interval
		if remaining < wait {
			wait = remaining
		}
		ticker.Reset(wait)

		select {
		case <-ctx.Done():
			// Client went away; the cursor is untouched and the next poll
			// resumes from the same sinceID.
			return nil, ctx.Err()
		case <-ticker.C:
		}

		records, err := uc.log.ReadSince(ctx, sinceID)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			return records, nil
		}
	}
}
