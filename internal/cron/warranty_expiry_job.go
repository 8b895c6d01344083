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

const defaultWarrantyWarningDays = 30

type warrantyLister interface {
	ListWarrantyExpiringBetween(ctx context.Context, from, until time.Time) ([]models.Asset, error)
}

// WarrantyExpiryJobParams configures the warranty expiry warning job.
type WarrantyExpiryJobParams struct {
	Logger      *logger.Logger
	Assets      warrantyLister
	Users       managerLister
	Notifier    jobNotifier
	WarningDays int
}

type warrantyExpiryJob struct {
	logg        *logger.Logger
	assets      warrantyLister
	users       managerLister
	notifier    jobNotifier
	warningDays int
	now         func() time.Time
}

// NewWarrantyExpiryJob constructs the warranty expiry warning job.
func NewWarrantyExpiryJob(params WarrantyExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Assets == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	warningDays := params.WarningDays
	if warningDays <= 0 {
		warningDays = defaultWarrantyWarningDays
	}
	return &warrantyExpiryJob{
		logg:        params.Logger,
		assets:      params.Assets,
		users:       params.Users,
		notifier:    params.Notifier,
		warningDays: warningDays,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (j *warrantyExpiryJob) Name() string { return "warranty-expiry" }

// Run warns managers about warranties lapsing inside the warning window. The
// dedupe key is per asset, not per day: one warning per asset is enough.
func (j *warrantyExpiryJob) Run(ctx context.Context) error {
	now := j.now()
	until := now.AddDate(0, 0, j.warningDays)
	rows, err := j.assets.ListWarrantyExpiringBetween(ctx, now, until)
	if err != nil {
		return fmt.Errorf("list expiring warranties: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	managers, err := j.users.ListManagers(ctx)
	if err != nil {
		return fmt.Errorf("list managers: %w", err)
	}

	var errs error
	notified := 0
	for _, asset := range rows {
		expiry := ""
		if asset.WarrantyExpiryDate != nil {
			expiry = asset.WarrantyExpiryDate.Format("2006-01-02")
		}
		for _, manager := range managers {
			err := j.notifier.Notify(ctx, notifications.NotifyParams{
				RecipientID: manager.ID,
				Kind:        enums.NotificationKindWarrantyExpiring,
				Title:       fmt.Sprintf("Warranty on %s expires %s", asset.Code, expiry),
				Message:     asset.Name,
				DedupeKey:   fmt.Sprintf("warranty-expiring:%s:%s", asset.ID, manager.ID),
			})
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("asset %s: %w", asset.Code, err))
				continue
			}
			notified++
		}
	}

	j.logg.Info(j.logg.WithField(ctx, "notified", notified), "warranty expiry warnings sent")
	return errs
}
