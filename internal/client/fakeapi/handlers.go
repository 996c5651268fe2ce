package fakeapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/keydesk/internal/client/models"
	"github.com/dmitrijs2005/keydesk/internal/netx"
	"github.com/dmitrijs2005/keydesk/internal/timex"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func detail(msg string) errorBody { return errorBody{Detail: msg} }

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		netx.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "invalid request body"}},
		})
		return false
	}
	return true
}

func keyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		netx.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "id must be an integer"}},
		})
		return 0, false
	}
	return id, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	netx.WriteJSON(w, http.StatusOK, models.Health{Status: "healthy", Service: "admin"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	hash, ok := s.admins[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		netx.WriteJSON(w, http.StatusUnauthorized, detail("Incorrect username or password"))
		return
	}

	s.mu.Lock()
	token, err := s.issueToken(req.Username, tokenTTL)
	s.mu.Unlock()
	if err != nil {
		netx.WriteJSON(w, http.StatusInternalServerError, detail(err.Error()))
		return
	}
	netx.WriteJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	keys := s.sortedKeys(nil)
	s.mu.Unlock()
	netx.WriteJSON(w, http.StatusOK, keys)
}

func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var req models.CreateKeyRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Tier == "" {
		req.Tier = models.TierStandard
	}
	if !req.Tier.Valid() {
		netx.WriteJSON(w, http.StatusBadRequest, detail("Invalid tier. Must be free, standard, or premium"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var expires *timex.Timestamp
	if req.ExpiresInDays != nil && *req.ExpiresInDays > 0 {
		expires = &timex.Timestamp{Time: s.now().UTC().Add(time.Duration(*req.ExpiresInDays) * 24 * time.Hour)}
	}
	k := s.insertKey(req.UserID, req.Tier, req.Description, "admin", expires)
	netx.WriteJSON(w, http.StatusOK, *k)
}

func (s *Server) handleUpdateKey(w http.ResponseWriter, r *http.Request) {
	id, ok := keyID(w, r)
	if !ok {
		return
	}
	var upd models.KeyUpdate
	if !decode(w, r, &upd) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[id]
	if !ok {
		netx.WriteJSON(w, http.StatusNotFound, detail("API key not found"))
		return
	}
	if upd.Tier != nil {
		k.Tier = *upd.Tier
	}
	if upd.IsActive != nil {
		k.IsActive = *upd.IsActive
	}
	if upd.Description != nil {
		d := *upd.Description
		k.Description = &d
	}
	k.UpdatedAt = timex.Timestamp{Time: s.now().UTC()}
	netx.WriteJSON(w, http.StatusOK, *k)
}

func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	id, ok := keyID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[id]; !ok {
		netx.WriteJSON(w, http.StatusNotFound, detail("API key not found"))
		return
	}
	delete(s.keys, id)
	netx.WriteJSON(w, http.StatusOK, map[string]string{"message": "API key deleted successfully"})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			netx.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]string{{"msg": "days must be a positive integer"}},
			})
			return
		}
		days = n
	}
	userID := r.URL.Query().Get("user_id")

	s.mu.Lock()
	byDate := make(map[string]*models.UsagePoint)
	for _, row := range s.usage {
		if userID != "" && row.userID != userID {
			continue
		}
		p, ok := byDate[row.point.Date]
		if !ok {
			p = &models.UsagePoint{Date: row.point.Date}
			byDate[row.point.Date] = p
		}
		p.Requests += row.point.Requests
		p.TotalTokens += row.point.TotalTokens
		p.PromptTokens += row.point.PromptTokens
		p.CompletionTokens += row.point.CompletionTokens
	}
	s.mu.Unlock()

	points := make([]models.UsagePoint, 0, len(byDate))
	for _, p := range byDate {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	if len(points) > days {
		points = points[len(points)-days:]
	}
	netx.WriteJSON(w, http.StatusOK, points)
}

func (s *Server) emailAllowed(w http.ResponseWriter, email string) bool {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		netx.WriteJSON(w, http.StatusBadRequest, detail("Invalid email format"))
		return false
	}
	s.mu.Lock()
	_, ok := s.allowedDomains[domain]
	s.mu.Unlock()
	if !ok {
		netx.WriteJSON(w, http.StatusBadRequest, detail("Email domain not allowed. Please use a company email address."))
		return false
	}
	return true
}

func (s *Server) handleRequestCode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	b := s.block
	s.mu.Unlock()
	if b != nil {
		b.entered <- struct{}{}
		<-b.release
	}

	var req models.CodeRequest
	if !decode(w, r, &req) {
		return
	}
	email := normalizeEmail(req.Email)
	if !s.emailAllowed(w, email) {
		return
	}

	s.mu.Lock()
	s.codes[email] = pendingCode{code: s.newCode(), expires: s.now().Add(codeTTL)}
	s.mu.Unlock()

	netx.WriteJSON(w, http.StatusOK, models.CodeSent{
		Message:          "Verification code sent to your email",
		ExpiresInMinutes: int(codeTTL / time.Minute),
	})
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if !decode(w, r, &req) {
		return
	}
	email := normalizeEmail(req.Email)
	code := strings.TrimSpace(req.Code)

	s.mu.Lock()
	defer s.mu.Unlock()

	pc, ok := s.codes[email]
	if !ok || pc.code != code || !s.now().Before(pc.expires) {
		netx.WriteJSON(w, http.StatusBadRequest, detail("Invalid or expired verification code"))
		return
	}
	delete(s.codes, email)

	active := s.sortedKeys(func(k *models.APIKey) bool { return k.UserID == email && k.IsActive })
	if len(active) > 0 {
		netx.WriteJSON(w, http.StatusOK, models.IssuedKey{APIKey: active[0].Key, Message: "You already have an active API key"})
		return
	}

	desc := "Self-service registration"
	k := s.insertKey(email, models.TierStandard, &desc, "self-service", nil)
	netx.WriteJSON(w, http.StatusOK, models.IssuedKey{
		APIKey:  k.Key,
		Message: "API key created successfully! Please save this key, it won't be shown again.",
	})
}

func (s *Server) handleMyKeys(w http.ResponseWriter, r *http.Request) {
	email := normalizeEmail(r.URL.Query().Get("email"))
	if !s.emailAllowed(w, email) {
		return
	}

	s.mu.Lock()
	keys := s.sortedKeys(func(k *models.APIKey) bool { return k.UserID == email })
	s.mu.Unlock()
	netx.WriteJSON(w, http.StatusOK, keys)
}
