package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/models"
)

// KeyService manages API keys on the backend.
//
// Create returns the record including its secret; callers show it once and
// never fetch it again for display. Update and SetActive return the record as
// confirmed by the backend.
type KeyService interface {
	List(ctx context.Context) ([]models.APIKey, error)
	Create(ctx context.Context, req models.CreateKeyRequest) (models.APIKey, error)
	SetActive(ctx context.Context, id int64, active bool) (models.APIKey, error)
	Update(ctx context.Context, id int64, upd models.KeyUpdate) (models.APIKey, error)
	Delete(ctx context.Context, id int64) error
}

type keyService struct {
	api  client.AdminClient
	auth Authorizer
}

func NewKeyService(api client.AdminClient, auth Authorizer) KeyService {
	return &keyService{api: api, auth: auth}
}

func (s *keyService) List(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := s.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		keys, err = s.api.ListKeys(ctx, token)
		return err
	})
	return keys, err
}

// Create validates req locally and creates the key. An empty tier means
// standard.
func (s *keyService) Create(ctx context.Context, req models.CreateKeyRequest) (models.APIKey, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return models.APIKey{}, client.Invalid("user_id", "User ID is required")
	}
	if req.Tier == "" {
		req.Tier = models.TierStandard
	}
	if !req.Tier.Valid() {
		return models.APIKey{}, client.Invalid("tier", "Invalid tier. Must be free, standard, or premium")
	}
	if req.ExpiresInDays != nil && *req.ExpiresInDays <= 0 {
		return models.APIKey{}, client.Invalid("expires_in_days", "Expiry must be a positive number of days")
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		req.Description = nil
	}

	var k models.APIKey
	err := s.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		k, err = s.api.CreateKey(ctx, token, req)
		return err
	})
	return k, err
}

func (s *keyService) SetActive(ctx context.Context, id int64, active bool) (models.APIKey, error) {
	return s.Update(ctx, id, models.KeyUpdate{IsActive: &active})
}

func (s *keyService) Update(ctx context.Context, id int64, upd models.KeyUpdate) (models.APIKey, error) {
	if upd.Empty() {
		return models.APIKey{}, client.Invalid("update", "Nothing to update")
	}
	if upd.Tier != nil && !upd.Tier.Valid() {
		return models.APIKey{}, client.Invalid("tier", "Invalid tier. Must be free, standard, or premium")
	}

	var k models.APIKey
	err := s.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		k, err = s.api.UpdateKey(ctx, token, id, upd)
		return err
	})
	return k, err
}

func (s *keyService) Delete(ctx context.Context, id int64) error {
	return s.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		return s.api.DeleteKey(ctx, token, id)
	})
}
