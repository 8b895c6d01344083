package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
)

type assetCounter interface {
	CountByState(ctx context.Context) (map[enums.AssetState]int64, error)
}

type assignmentCounter interface {
	CountActive(ctx context.Context) (int64, error)
	ListActiveOverdue(ctx context.Context, now time.Time) ([]models.AssetAssignment, error)
}

type requestCounter interface {
	CountByState(ctx context.Context) (map[enums.RequestState]int64, error)
	ListOpenOverdue(ctx context.Context, now time.Time) ([]models.AssetRequest, error)
}

// Stats is the aggregate snapshot behind the dashboard view.
type Stats struct {
	AssetsByState      map[enums.AssetState]int64   `json:"assetsByState"`
	TotalAssets        int64                        `json:"totalAssets"`
	ActiveAssignments  int64                        `json:"activeAssignments"`
	OverdueAssignments int64                        `json:"overdueAssignments"`
	RequestsByState    map[enums.RequestState]int64 `json:"requestsByState"`
	OpenRequests       int64                        `json:"openRequests"`
	OverdueRequests    int64                        `json:"overdueRequests"`
	PendingApprovals   int64                        `json:"pendingApprovals"`
	GeneratedAt        time.Time                    `json:"generatedAt"`
}

// Service aggregates fleet-wide counters for the dashboard.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	assets      assetCounter
	assignments assignmentCounter
	requests    requestCounter
	now         func() time.Time
}

// NewService wires the dashboard counters.
func NewService(assets assetCounter, assignments assignmentCounter, requests requestCounter) (Service, error) {
	if assets == nil {
		return nil, fmt.Errorf("asset counter required")
	}
	if assignments == nil {
		return nil, fmt.Errorf("assignment counter required")
	}
	if requests == nil {
		return nil, fmt.Errorf("request counter required")
	}
	return &service{
		assets:      assets,
		assignments: assignments,
		requests:    requests,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()

	assetCounts, err := s.assets.CountByState(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count assets")
	}
	var totalAssets int64
	for _, count := range assetCounts {
		totalAssets += count
	}

	activeAssignments, err := s.assignments.CountActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active assignments")
	}
	overdueAssignments, err := s.assignments.ListActiveOverdue(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue assignments")
	}

	requestCounts, err := s.requests.CountByState(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count requests")
	}
	overdueRequests, err := s.requests.ListOpenOverdue(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue requests")
	}

	var openRequests int64
	for state, count := range requestCounts {
		if !state.IsTerminal() && state != enums.RequestStateDraft {
			openRequests += count
		}
	}
	pendingApprovals := requestCounts[enums.RequestStateSubmitted] + requestCounts[enums.RequestStateUnderReview]

	return &Stats{
		AssetsByState:      assetCounts,
		TotalAssets:        totalAssets,
		ActiveAssignments:  activeAssignments,
		OverdueAssignments: int64(len(overdueAssignments)),
		RequestsByState:    requestCounts,
		OpenRequests:       openRequests,
		OverdueRequests:    int64(len(overdueRequests)),
		PendingApprovals:   pendingApprovals,
		GeneratedAt:        now,
	}, nil
}
