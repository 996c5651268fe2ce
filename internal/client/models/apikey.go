// Package models defines the records exchanged with the keydesk backend.
package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/keydesk/internal/timex"
)

// Tier classifies the service level of an API key.
type Tier string

const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// Tiers lists every tier the backend accepts, cheapest first.
var Tiers = []Tier{TierFree, TierStandard, TierPremium}

// ParseTier maps user input onto a known tier. Matching is case-insensitive.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q (want free, standard or premium)", s)
	}
	return t, nil
}

func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierStandard, TierPremium:
		return true
	}
	return false
}

// APIKey is a server-owned key record. Key holds the secret; listings carry it
// too, but creation is the only moment it is guaranteed to be shown.
type APIKey struct {
	ID          int64            `json:"id"`
	Key         string           `json:"key"`
	UserID      string           `json:"user_id"`
	Tier        Tier             `json:"tier"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   timex.Timestamp  `json:"created_at"`
	UpdatedAt   timex.Timestamp  `json:"updated_at"`
	ExpiresAt   *timex.Timestamp `json:"expires_at,omitempty"`
	Description *string          `json:"description,omitempty"`
	CreatedBy   *string          `json:"created_by,omitempty"`
}

// Status renders IsActive the way listings show it.
func (k APIKey) Status() string {
	if k.IsActive {
		return "Active"
	}
	return "Inactive"
}

// CreateKeyRequest is the body of POST /api/keys.
type CreateKeyRequest struct {
	UserID        string  `json:"user_id"`
	Tier          Tier    `json:"tier"`
	Description   *string `json:"description"`
	ExpiresInDays *int    `json:"expires_in_days"`
}

// KeyUpdate is the body of PUT /api/keys/{id}. Nil fields are left unchanged
// by the backend.
type KeyUpdate struct {
	IsActive    *bool   `json:"is_active,omitempty"`
	Tier        *Tier   `json:"tier,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u KeyUpdate) Empty() bool {
	return u.IsActive == nil && u.Tier == nil && u.Description == nil
}
