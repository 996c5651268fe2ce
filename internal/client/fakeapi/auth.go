package fakeapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/keydesk/internal/common"
	"github.com/dmitrijs2005/keydesk/internal/netx"
	"github.com/golang-jwt/jwt/v5"
)

type adminClaims struct {
	Generation int `json:"gen"`
	jwt.RegisteredClaims
}

// IssueToken signs an admin token for username that expires after ttl.
func (s *Server) IssueToken(username string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueToken(username, ttl)
}

// issueToken must be called with s.mu held.
func (s *Server) issueToken(username string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := adminClaims{
		Generation: s.generation,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) validateToken(raw string) error {
	s.mu.Lock()
	secret, gen, now := s.secret, s.generation, s.now
	s.mu.Unlock()

	claims := &adminClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now))
	if err != nil {
		return err
	}
	if claims.Generation != gen {
		return errors.New("token revoked")
	}

	s.mu.Lock()
	_, known := s.admins[claims.Subject]
	s.mu.Unlock()
	if !known {
		return errors.New("unknown admin")
	}
	return nil
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			netx.WriteJSON(w, http.StatusUnauthorized, detail("Not authenticated"))
			return
		}
		if err := s.validateToken(token); err != nil {
			netx.WriteJSON(w, http.StatusUnauthorized, detail("Invalid authentication credentials"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
