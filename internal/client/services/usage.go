package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/models"
)

// UsageReport is a usage series and its totals.
type UsageReport struct {
	Query  models.UsageQuery
	Points []models.UsagePoint
	Totals models.UsageTotals
}

type UsageService interface {
	Stats(ctx context.Context, q models.UsageQuery) (UsageReport, error)
}

type usageService struct {
	api  client.AdminClient
	auth Authorizer
}

func NewUsageService(api client.AdminClient, auth Authorizer) UsageService {
	return &usageService{api: api, auth: auth}
}

func (s *usageService) Stats(ctx context.Context, q models.UsageQuery) (UsageReport, error) {
	if q.Days <= 0 {
		return UsageReport{}, client.Invalid("days", "Days must be a positive number")
	}
	q.UserID = strings.TrimSpace(q.UserID)

	var points []models.UsagePoint
	err := s.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		points, err = s.api.Usage(ctx, token, q)
		return err
	})
	if err != nil {
		return UsageReport{}, err
	}
	return UsageReport{Query: q, Points: points, Totals: models.SumUsage(points)}, nil
}
