package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/rvalverde/assettrack-backend/internal/notifications"
	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
)

type overdueAssignmentLister interface {
	ListActiveOverdue(ctx context.Context, now time.Time) ([]models.AssetAssignment, error)
}

type jobNotifier interface {
	Notify(ctx context.Context, params notifications.NotifyParams) error
}

// OverdueAssignmentsJobParams configures the overdue assignment reminder job.
type OverdueAssignmentsJobParams struct {
	Logger      *logger.Logger
	Assignments overdueAssignmentLister
	Notifier    jobNotifier
}

type overdueAssignmentsJob struct {
	logg        *logger.Logger
	assignments overdueAssignmentLister
	notifier    jobNotifier
	now         func() time.Time
}

// NewOverdueAssignmentsJob constructs the overdue assignment reminder job.
func NewOverdueAssignmentsJob(params OverdueAssignmentsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Assignments == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &overdueAssignmentsJob{
		logg:        params.Logger,
		assignments: params.Assignments,
		notifier:    params.Notifier,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (j *overdueAssignmentsJob) Name() string { return "overdue-assignments" }

// Run reminds every holder of an overdue assignment once per day. The dedupe
// key carries the day so an hourly cadence does not spam holders.
func (j *overdueAssignmentsJob) Run(ctx context.Context) error {
	now := j.now()
	rows, err := j.assignments.ListActiveOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("list overdue assignments: %w", err)
	}

	var errs error
	notified := 0
	for _, assignment := range rows {
		assetLabel := assignment.AssetID.String()
		if assignment.Asset != nil {
			assetLabel = assignment.Asset.Code
		}
		expected := ""
		if assignment.ExpectedReturnDate != nil {
			expected = assignment.ExpectedReturnDate.Format("2006-01-02")
		}
		err := j.notifier.Notify(ctx, notifications.NotifyParams{
			RecipientID: assignment.AssigneeID,
			Kind:        enums.NotificationKindAssignmentOverdue,
			Title:       fmt.Sprintf("Asset %s is overdue for return", assetLabel),
			Message:     fmt.Sprintf("The expected return date was %s.", expected),
			DedupeKey:   fmt.Sprintf("assignment-overdue:%s:%s", assignment.ID, now.Format("2006-01-02")),
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("assignment %s: %w", assignment.ID, err))
			continue
		}
		notified++
	}

	j.logg.Info(j.logg.WithField(ctx, "notified", notified), "overdue assignment reminders sent")
	return errs
}
