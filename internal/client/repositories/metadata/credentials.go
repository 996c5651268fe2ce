package metadata

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/keydesk/internal/client/models"
	"github.com/dmitrijs2005/keydesk/internal/dbx"
)

const (
	keyAccessToken = "access_token"
	keyUsername    = "username"
)

// CredentialStore persists the admin credential between runs. Token and
// username are written and removed together.
type CredentialStore struct {
	db *sql.DB
}

func NewCredentialStore(db *sql.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Load returns the cached credential. ok is false when no token is stored.
// ExpiresAt is left zero; the caller derives it from the token.
func (s *CredentialStore) Load(ctx context.Context) (cred models.Credential, ok bool, err error) {
	repo := NewSQLiteRepository(s.db)

	token, err := repo.Get(ctx, keyAccessToken)
	if err != nil || len(token) == 0 {
		return models.Credential{}, false, err
	}
	username, err := repo.Get(ctx, keyUsername)
	if err != nil {
		return models.Credential{}, false, err
	}
	return models.Credential{Token: string(token), Username: string(username)}, true, nil
}

func (s *CredentialStore) Save(ctx context.Context, cred models.Credential) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyAccessToken, []byte(cred.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, keyUsername, []byte(cred.Username))
	})
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, keyAccessToken); err != nil {
			return err
		}
		return repo.Delete(ctx, keyUsername)
	})
}
