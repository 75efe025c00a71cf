package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

type errorResponse struct {
	Error string `json:"error"`
}

// InsightsResponse is the body of GET /api/insights.
type InsightsResponse struct {
	Window       model.DateRange `json:"window"`
	Insights     []model.Insight `json:"insights"`
	TotalSavings float64         `json:"total_annual_savings"`
}

// CandidatesResponse is the body of GET /api/subscriptions/candidates.
type CandidatesResponse struct {
	Candidates []model.Candidate `json:"candidates"`
}

// SubscriptionsResponse is the body of GET /api/subscriptions.
type SubscriptionsResponse struct {
	Subscriptions []model.Subscription `json:"subscriptions"`
	MonthlyTotal  float64              `json:"monthly_total"`
}

// ConfirmRequest is the body of POST /api/subscriptions.
type ConfirmRequest struct {
	Vendor string `json:"vendor"`
	// Exclude carries vendors the client has already dismissed.
	Exclude []string `json:"exclude,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := s.cfg.InsightDays
	if raw := q.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "days must be a number")
			return
		}
		days = n
	}

	window, err := model.ParseWindow(q.Get("start"), q.Get("end"), days, s.svc.Now())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	insights := s.svc.GenerateInsights(r.Context(), s.cfg.OwnerID, window)
	var total float64
	for _, in := range insights {
		total += in.Savings()
	}
	s.writeJSON(w, http.StatusOK, InsightsResponse{
		Window:       window,
		Insights:     insights,
		TotalSavings: money.Round(total),
	})
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	session := subscription.NewSession(splitList(r.URL.Query().Get("exclude"))...)

	candidates, err := s.svc.DetectCandidates(r.Context(), s.cfg.OwnerID, session)
	if err != nil {
		common.LoggerFromContext(r.Context()).Error("Failed to detect candidates", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	if candidates == nil {
		candidates = []model.Candidate{}
	}
	s.writeJSON(w, http.StatusOK, CandidatesResponse{Candidates: candidates})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Vendor) == "" {
		s.writeError(w, http.StatusBadRequest, "vendor is required")
		return
	}

	session := subscription.NewSession(req.Exclude...)
	sub, err := s.svc.ConfirmVendor(r.Context(), s.cfg.OwnerID, req.Vendor, session)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, sub)
	case errors.Is(err, common.ErrUnknownCandidate):
		s.writeError(w, http.StatusBadRequest, "no subscription candidate for vendor "+req.Vendor)
	case errors.Is(err, common.ErrPersistence):
		common.LoggerFromContext(r.Context()).Error("Failed to save subscription", "vendor", req.Vendor, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save subscription")
	default:
		common.LoggerFromContext(r.Context()).Error("Failed to confirm subscription", "vendor", req.Vendor, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to detect subscriptions")
	}
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.ListSubscriptions(r.Context(), s.cfg.OwnerID)
	if err != nil {
		common.LoggerFromContext(r.Context()).Error("Failed to list subscriptions", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load subscriptions")
		return
	}
	if subs == nil {
		subs = []model.Subscription{}
	}

	var monthly float64
	for _, sub := range subs {
		if sub.IsActive() {
			monthly += sub.MonthlyCost()
		}
	}
	s.writeJSON(w, http.StatusOK, SubscriptionsResponse{
		Subscriptions: subs,
		MonthlyTotal:  money.Round(monthly),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
