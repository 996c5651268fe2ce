// Package fakeapi is an in-memory implementation of the keydesk backend
// contract, served over httptest. Tests drive the real HTTPClient against it.
package fakeapi

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/keydesk/internal/client/models"
	"github.com/dmitrijs2005/keydesk/internal/common"
	"github.com/dmitrijs2005/keydesk/internal/timex"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeTTL  = 5 * time.Minute
	tokenTTL = time.Hour
)

type usageRow struct {
	userID string
	point  models.UsagePoint
}

type pendingCode struct {
	code    string
	expires time.Time
}

type blocker struct {
	entered chan struct{}
	release chan struct{}
}

// Server holds the fake backend state. All exported methods are safe for
// concurrent use with in-flight requests.
type Server struct {
	mu sync.Mutex

	secret     []byte
	generation int
	now        func() time.Time

	admins         map[string][]byte
	keys           map[int64]*models.APIKey
	nextID         int64
	usage          []usageRow
	codes          map[string]pendingCode
	allowedDomains map[string]struct{}

	hits    map[string]int
	block   *blocker
	newCode func() string
}

// New returns an empty backend that accepts emails from company.com.
func New() *Server {
	return &Server{
		secret:         common.GenerateRandByteArray(32),
		now:            time.Now,
		admins:         make(map[string][]byte),
		keys:           make(map[int64]*models.APIKey),
		nextID:         1,
		codes:          make(map[string]pendingCode),
		allowedDomains: map[string]struct{}{"company.com": {}},
		hits:           make(map[string]int),
		newCode:        randomCode,
	}
}

// Start serves the backend on a local listener. Close the returned server
// when done.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Handler())
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countHits)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/keys", s.handleListKeys)
			r.Post("/keys", s.handleCreateKey)
			r.Put("/keys/{id}", s.handleUpdateKey)
			r.Delete("/keys/{id}", s.handleDeleteKey)
			r.Get("/usage", s.handleUsage)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/request-code", s.handleRequestCode)
		r.Post("/verify-code", s.handleVerifyCode)
		r.Get("/my-keys", s.handleMyKeys)
	})

	return r
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Hits reports how many requests reached "METHOD /path".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits reports how many requests reached the backend at all.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// SetClock replaces the time source used for tokens and codes.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetCodeSource replaces the generator of verification codes.
func (s *Server) SetCodeSource(fn func() string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newCode = fn
}

// AllowDomain adds an email domain to the self-service whitelist.
func (s *Server) AllowDomain(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowedDomains[strings.ToLower(domain)] = struct{}{}
}

// AddAdmin registers an admin account.
func (s *Server) AddAdmin(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[username] = hash
	return nil
}

// RevokeTokens invalidates every token issued so far; the next
// authenticated request with one of them gets 401.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// SeedKey stores a key record directly and returns it.
func (s *Server) SeedKey(userID string, tier models.Tier, active bool) models.APIKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.insertKey(userID, tier, nil, "seed", nil)
	k.IsActive = active
	return *k
}

// Key returns the stored record with id.
func (s *Server) Key(id int64) (models.APIKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return models.APIKey{}, false
	}
	return *k, true
}

// SeedUsage records a usage point attributed to userID.
func (s *Server) SeedUsage(userID string, p models.UsagePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = append(s.usage, usageRow{userID: userID, point: p})
}

// LastCode returns the pending verification code for email, if any.
func (s *Server) LastCode(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.codes[normalizeEmail(email)]
	return pc.code, ok
}

// BlockRequestCode makes request-code handlers stop before doing any work.
// Each blocked request sends on entered; release lets all of them continue.
func (s *Server) BlockRequestCode() (entered <-chan struct{}, release func()) {
	b := &blocker{entered: make(chan struct{}, 16), release: make(chan struct{})}
	s.mu.Lock()
	s.block = b
	s.mu.Unlock()

	var once sync.Once
	return b.entered, func() {
		once.Do(func() {
			close(b.release)
			s.mu.Lock()
			if s.block == b {
				s.block = nil
			}
			s.mu.Unlock()
		})
	}
}

// insertKey must be called with s.mu held.
func (s *Server) insertKey(userID string, tier models.Tier, description *string, createdBy string, expires *timex.Timestamp) *models.APIKey {
	secret, _ := common.MakeRandHexString(24)
	now := timex.Timestamp{Time: s.now().UTC()}
	k := &models.APIKey{
		ID:          s.nextID,
		Key:         common.APIKeyPrefix + secret,
		UserID:      userID,
		Tier:        tier,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   expires,
		Description: description,
		CreatedBy:   &createdBy,
	}
	s.keys[k.ID] = k
	s.nextID++
	return k
}

// sortedKeys must be called with s.mu held. Newest first.
func (s *Server) sortedKeys(filter func(*models.APIKey) bool) []models.APIKey {
	out := make([]models.APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		if filter == nil || filter(k) {
			out = append(out, *k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "123456"
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
