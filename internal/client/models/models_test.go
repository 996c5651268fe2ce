package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{in: "free", want: TierFree},
		{in: " Standard ", want: TierStandard},
		{in: "PREMIUM", want: TierPremium},
		{in: "gold", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTier(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestAPIKey_DecodesBackendRecord(t *testing.T) {
	body := `{
		"id": 7,
		"key": "sk-internal-abc",
		"user_id": "alice@company.com",
		"tier": "premium",
		"is_active": false,
		"created_at": "2024-03-01T10:00:00.5",
		"updated_at": "2024-03-02T10:00:00",
		"expires_at": null,
		"description": "batch jobs",
		"created_by": "admin"
	}`

	var k APIKey
	require.NoError(t, json.Unmarshal([]byte(body), &k))

	assert.EqualValues(t, 7, k.ID)
	assert.Equal(t, TierPremium, k.Tier)
	assert.False(t, k.IsActive)
	assert.Equal(t, "Inactive", k.Status())
	assert.True(t, k.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 500000000, time.UTC)))
	assert.Nil(t, k.ExpiresAt)
	require.NotNil(t, k.Description)
	assert.Equal(t, "batch jobs", *k.Description)
}

func TestKeyUpdate_OmitsUnsetFields(t *testing.T) {
	active := true
	b, err := json.Marshal(KeyUpdate{IsActive: &active})
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_active":true}`, string(b))

	assert.True(t, KeyUpdate{}.Empty())
	assert.False(t, KeyUpdate{IsActive: &active}.Empty())
}

func TestCreateKeyRequest_SendsNullOptionals(t *testing.T) {
	b, err := json.Marshal(CreateKeyRequest{UserID: "u", Tier: TierFree})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u","tier":"free","description":null,"expires_in_days":null}`, string(b))
}

func TestCredential_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, Credential{Token: "t"}.Expired(now), "no expiry never expires")
	assert.False(t, Credential{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Credential{ExpiresAt: now}.Expired(now))
	assert.True(t, Credential{ExpiresAt: now.Add(-time.Second)}.Expired(now))
}

func TestSumUsage(t *testing.T) {
	points := []UsagePoint{
		{Date: "2025-01-01", Requests: 3, TotalTokens: 100},
		{Date: "2025-01-02", Requests: 5, TotalTokens: 250},
	}
	assert.Equal(t, UsageTotals{Requests: 8, TotalTokens: 350}, SumUsage(points))
	assert.Equal(t, UsageTotals{}, SumUsage(nil))
}
