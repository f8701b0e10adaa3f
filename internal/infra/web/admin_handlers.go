package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"event-access-platform/internal/domain/model"
)

type userDTO struct {
	EmailKey      string  `json:"emailKey"`
	Email         string  `json:"email"`
	Name          string  `json:"name,omitempty"`
	Role          string  `json:"role"`
	AccessGranted bool    `json:"accessGranted"`
	AccessType    string  `json:"accessType"`
	CouponCode    string  `json:"couponCode,omitempty"`
	GrantedAt     *string `json:"grantedAt,omitempty"`
	RevokedAt     *string `json:"revokedAt,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

func toUserDTO(a *model.Account) userDTO {
	return userDTO{
		EmailKey:      a.EmailKey,
		Email:         a.Email,
		Name:          a.Name,
		Role:          string(a.Role),
		AccessGranted: a.AccessGranted,
		AccessType:    string(a.AccessType),
		CouponCode:    a.CouponCode,
		GrantedAt:     fmtTime(a.GrantedAt),
		RevokedAt:     fmtTime(a.RevokedAt),
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

func fmtTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	accounts, err := s.accessUC.List(ctx, offset, limit, actingAdmin(ctx))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	out := make([]userDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toUserDTO(a))
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": out})
}

type setAccessRequest struct {
	Grant bool `json:"grant"`
}

func (s *Server) handleSetAccess(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	key := chi.URLParam(r, "key")
	var req setAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := s.accessUC.SetAccess(ctx, key, req.Grant, actingAdmin(ctx)); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

type bulkAccessRequest struct {
	EmailKeys []string `json:"emailKeys"`
	Grant     bool     `json:"grant"`
}

func (s *Server) handleSetAccessBulk(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req bulkAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.EmailKeys) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "emailKeys is required"})
		return
	}

	results := s.accessUC.SetAccessBulk(ctx, req.EmailKeys, req.Grant, actingAdmin(ctx))

	type itemResult struct {
		EmailKey string `json:"emailKey"`
		OK       bool   `json:"ok"`
		Error    string `json:"error,omitempty"`
	}
	out := make([]itemResult, 0, len(results))
	failed := 0
	for _, res := range results {
		item := itemResult{EmailKey: res.EmailKey, OK: res.Err == nil}
		if res.Err != nil {
			failed++
			item.Error = s.translator.UserMessage(res.Err)
		}
		out = append(out, item)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"results": out,
		"failed":  failed,
	})
}

type couponDTO struct {
	Code        string `json:"code"`
	Active      bool   `json:"active"`
	MaxUses     *int   `json:"maxUses"`
	UsedCount   int    `json:"usedCount"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func toCouponDTO(c *model.Coupon) couponDTO {
	return couponDTO{
		Code:        c.Code,
		Active:      c.Active,
		MaxUses:     c.MaxUses,
		UsedCount:   c.UsedCount,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListCoupons(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	coupons, err := s.couponUC.List(ctx, actingAdmin(ctx))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	out := make([]couponDTO, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, toCouponDTO(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"coupons": out})
}

type createCouponRequest struct {
	Code        string `json:"code"`
	MaxUses     *int   `json:"maxUses"`
	Description string `json:"description"`
}

func (s *Server) handleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req createCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Code is required"})
		return
	}

	c, err := s.couponUC.Create(ctx, req.Code, req.MaxUses, req.Description, actingAdmin(ctx))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCouponDTO(c))
}

type updateCouponRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleUpdateCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	code := chi.URLParam(r, "code")
	var req updateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := s.couponUC.SetActive(ctx, code, req.Active, actingAdmin(ctx)); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := s.couponUC.Delete(ctx, chi.URLParam(r, "code"), actingAdmin(ctx)); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

type conferenceDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Speaker     string  `json:"speaker,omitempty"`
	Description string  `json:"description,omitempty"`
	VideoURL    string  `json:"videoUrl"`
	ScheduledAt *string `json:"scheduledAt,omitempty"`
	Published   bool    `json:"published"`
	CreatedAt   string  `json:"createdAt"`
}

func toConferenceDTO(c *model.Conference) conferenceDTO {
	return conferenceDTO{
		ID:          c.ID,
		Title:       c.Title,
		Speaker:     c.Speaker,
		Description: c.Description,
		VideoURL:    c.VideoURL,
		ScheduledAt: fmtTime(c.ScheduledAt),
		Published:   c.Published,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleAdminListConferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	confs, err := s.conferenceUC.ListAll(ctx, actingAdmin(ctx))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	out := make([]conferenceDTO, 0, len(confs))
	for _, c := range confs {
		out = append(out, toConferenceDTO(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"conferences": out})
}

type conferenceRequest struct {
	Title       string     `json:"title"`
	Speaker     string     `json:"speaker"`
	Description string     `json:"description"`
	VideoURL    string     `json:"videoUrl"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Published   *bool      `json:"published"`
}

func (s *Server) handleCreateConference(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req conferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	c, err := s.conferenceUC.Create(ctx, req.Title, req.Speaker, req.Description, req.VideoURL, req.ScheduledAt, actingAdmin(ctx))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toConferenceDTO(c))
}

func (s *Server) handleUpdateConference(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	var req conferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	c := &model.Conference{
		ID:          id,
		Title:       req.Title,
		Speaker:     req.Speaker,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		ScheduledAt: req.ScheduledAt,
	}
	if req.Published != nil {
		c.Published = *req.Published
	}
	if err := s.conferenceUC.Update(ctx, c, actingAdmin(ctx)); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeleteConference(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := s.conferenceUC.Delete(ctx, chi.URLParam(r, "id"), actingAdmin(ctx)); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	totals, err := s.statsUC.Totals(ctx)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	byType := make(map[string]int, len(totals.ByAccessType))
	for t, n := range totals.ByAccessType {
		byType[string(t)] = n
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"accounts":          totals.Accounts,
		"byAccessType":      byType,
		"activeCoupons":     totals.ActiveCoupons,
		"revenueByCurrency": totals.RevenueByCurrency,
	})
}
