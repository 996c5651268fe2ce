package client

import (
	"context"

	"github.com/dmitrijs2005/keydesk/internal/client/models"
)

// AdminClient is the admin half of the backend contract. Authenticated calls
// take the bearer token explicitly; the session owning it decides what a 401
// means.
type AdminClient interface {
	Login(ctx context.Context, username, password string) (models.TokenResponse, error)
	ListKeys(ctx context.Context, token string) ([]models.APIKey, error)
	CreateKey(ctx context.Context, token string, req models.CreateKeyRequest) (models.APIKey, error)
	UpdateKey(ctx context.Context, token string, id int64, upd models.KeyUpdate) (models.APIKey, error)
	DeleteKey(ctx context.Context, token string, id int64) error
	Usage(ctx context.Context, token string, q models.UsageQuery) ([]models.UsagePoint, error)
	Ping(ctx context.Context) error
}

// PortalClient is the unauthenticated self-service half of the contract.
type PortalClient interface {
	RequestCode(ctx context.Context, email string) (models.CodeSent, error)
	VerifyCode(ctx context.Context, email, code string) (models.IssuedKey, error)
	MyKeys(ctx context.Context, email string) ([]models.APIKey, error)
}
