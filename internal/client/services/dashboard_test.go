package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/keydesk/internal/client/models"
)

// fakeKeys implements KeyService; only List is used by the dashboard.
type fakeKeys struct {
	keys    []models.APIKey
	err     error
	started chan struct{}
	wait    chan struct{}
}

func (f *fakeKeys) List(ctx context.Context) ([]models.APIKey, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.wait != nil {
		select {
		case <-f.wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.keys, f.err
}

func (f *fakeKeys) Create(context.Context, models.CreateKeyRequest) (models.APIKey, error) {
	return models.APIKey{}, errors.New("not implemented")
}

func (f *fakeKeys) SetActive(context.Context, int64, bool) (models.APIKey, error) {
	return models.APIKey{}, errors.New("not implemented")
}

func (f *fakeKeys) Update(context.Context, int64, models.KeyUpdate) (models.APIKey, error) {
	return models.APIKey{}, errors.New("not implemented")
}

func (f *fakeKeys) Delete(context.Context, int64) error { return errors.New("not implemented") }

type fakeUsage struct {
	points  []models.UsagePoint
	err     error
	gotDays int
	started chan struct{}
	wait    chan struct{}
}

func (f *fakeUsage) Stats(ctx context.Context, q models.UsageQuery) (UsageReport, error) {
	f.gotDays = q.Days
	if f.started != nil {
		close(f.started)
	}
	if f.wait != nil {
		select {
		case <-f.wait:
		case <-ctx.Done():
			return UsageReport{}, ctx.Err()
		}
	}
	if f.err != nil {
		return UsageReport{}, f.err
	}
	return UsageReport{Query: q, Points: f.points, Totals: models.SumUsage(f.points)}, nil
}

func TestDashboard_BothRegionsLoad(t *testing.T) {
	keys := &fakeKeys{keys: []models.APIKey{{ID: 1, IsActive: true}, {ID: 2}}}
	usage := &fakeUsage{points: []models.UsagePoint{{Date: "2025-01-01", Requests: 3, TotalTokens: 9}}}
	d := NewDashboard(NewKeyTable(keys), usage, 14)

	out := d.Load(context.Background())
	require.NoError(t, out.KeysErr)
	require.NoError(t, out.UsageErr)

	total, active := d.Table.Counts()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, active)
	assert.Equal(t, int64(3), out.Usage.Totals.Requests)
	assert.Equal(t, 14, usage.gotDays)
}

func TestDashboard_RegionsFailIndependently(t *testing.T) {
	boom := errors.New("usage down")
	keys := &fakeKeys{keys: []models.APIKey{{ID: 1}}}
	usage := &fakeUsage{err: boom}
	d := NewDashboard(NewKeyTable(keys), usage, 7)

	out := d.Load(context.Background())
	require.NoError(t, out.KeysErr)
	require.ErrorIs(t, out.UsageErr, boom)
	assert.Len(t, d.Table.Rows(), 1)

	keys.err = errors.New("keys down")
	usage.err = nil
	out = d.Load(context.Background())
	require.Error(t, out.KeysErr)
	require.NoError(t, out.UsageErr)
	// the failed refresh keeps the previous rows
	assert.Len(t, d.Table.Rows(), 1)
}

func TestDashboard_LoadsConcurrently(t *testing.T) {
	// each region waits for the other to start; a sequential loader would
	// never get past the first one
	keysStarted := make(chan struct{})
	usageStarted := make(chan struct{})
	keys := &fakeKeys{started: keysStarted, wait: usageStarted}
	usage := &fakeUsage{started: usageStarted, wait: keysStarted}
	d := NewDashboard(NewKeyTable(keys), usage, 7)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := d.Load(ctx)
	require.NoError(t, out.KeysErr)
	require.NoError(t, out.UsageErr)
}
