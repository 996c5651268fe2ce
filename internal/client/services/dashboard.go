package services

import (
	"context"

	"github.com/dmitrijs2005/keydesk/internal/client/models"
	"golang.org/x/sync/errgroup"
)

// DashboardData is the outcome of one dashboard load. The two regions fail
// independently.
type DashboardData struct {
	KeysErr  error
	Usage    UsageReport
	UsageErr error
}

// Dashboard loads the key table and recent usage.
type Dashboard struct {
	Table *KeyTable
	Usage UsageService
	Days  int
}

func NewDashboard(table *KeyTable, usage UsageService, days int) *Dashboard {
	return &Dashboard{Table: table, Usage: usage, Days: days}
}

// Load fetches keys and usage concurrently. A failure in one region does not
// cancel or block the other; each error is reported in its own field.
func (d *Dashboard) Load(ctx context.Context) DashboardData {
	var (
		g   errgroup.Group
		out DashboardData
	)

	g.Go(func() error {
		out.KeysErr = d.Table.Refresh(ctx)
		return nil
	})
	g.Go(func() error {
		out.Usage, out.UsageErr = d.Usage.Stats(ctx, models.UsageQuery{Days: d.Days})
		return nil
	})
	_ = g.Wait()

	return out
}
