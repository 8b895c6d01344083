package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/rvalverde/assettrack-backend/internal/notifications"
	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
)

type overdueRequestLister interface {
	ListOpenOverdue(ctx context.Context, now time.Time) ([]models.AssetRequest, error)
}

type managerLister interface {
	ListManagers(ctx context.Context) ([]models.User, error)
}

// OverdueRequestsJobParams configures the overdue request escalation job.
type OverdueRequestsJobParams struct {
	Logger   *logger.Logger
	Requests overdueRequestLister
	Users    managerLister
	Notifier jobNotifier
}

type overdueRequestsJob struct {
	logg     *logger.Logger
	requests overdueRequestLister
	users    managerLister
	notifier jobNotifier
	now      func() time.Time
}

// NewOverdueRequestsJob constructs the overdue request escalation job.
func NewOverdueRequestsJob(params OverdueRequestsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Requests == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &overdueRequestsJob{
		logg:     params.Logger,
		requests: params.Requests,
		users:    params.Users,
		notifier: params.Notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (j *overdueRequestsJob) Name() string { return "overdue-requests" }

// Run escalates requests past their deadline: the assigned technician gets a
// reminder, unassigned requests go to every manager.
func (j *overdueRequestsJob) Run(ctx context.Context) error {
	now := j.now()
	rows, err := j.requests.ListOpenOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("list overdue requests: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	var managers []models.User
	var errs error
	notified := 0
	day := now.Format("2006-01-02")
	for _, request := range rows {
		recipients := []uuid.UUID{}
		if request.AssignedToID != nil {
			recipients = append(recipients, *request.AssignedToID)
		} else {
			if managers == nil {
				if managers, err = j.users.ListManagers(ctx); err != nil {
					return fmt.Errorf("list managers: %w", err)
				}
			}
			for _, manager := range managers {
				recipients = append(recipients, manager.ID)
			}
		}

		for _, recipient := range recipients {
			err := j.notifier.Notify(ctx, notifications.NotifyParams{
				RecipientID: recipient,
				Kind:        enums.NotificationKindRequestOverdue,
				Title:       fmt.Sprintf("Request %s is past its deadline", request.Number),
				Message:     request.Subject,
				DedupeKey:   fmt.Sprintf("request-overdue:%s:%s:%s", request.ID, recipient, day),
			})
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("request %s: %w", request.Number, err))
				continue
			}
			notified++
		}
	}

	j.logg.Info(j.logg.WithField(ctx, "notified", notified), "overdue request escalations sent")
	return errs
}
