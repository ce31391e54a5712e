// Package analytics records every secured calculation and reports usage per
// endpoint.
package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/auth"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/repo"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultDays = 30
	MaxDays     = 365
)

type UsageHandler struct {
	Repo repo.Repository
	// Now is replaced in tests.
	Now func() time.Time
}

type UsageReport struct {
	Days      int              `json:"days"`
	Since     time.Time        `json:"since"`
	Total     int              `json:"total"`
	Endpoints []repo.UsageStat `json:"endpoints"`
}

func (h *UsageHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware stores one usage record per request of an authenticated user.
func (h *UsageHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		start := h.now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}
		rec := repo.UsageRecord{
			UserID:   userID,
			Endpoint: endpoint,
			Status:   sr.status,
			Duration: h.now().Sub(start),
			Choked:   w.Header().Get(gas.ChokedHeader) == "true",
			At:       start,
		}
		if err := h.Repo.RecordUsage(context.WithoutCancel(r.Context()), rec); err != nil {
			log.WithFields(log.Fields{"user": userID, "endpoint": endpoint, "error": err}).Error("usage not recorded")
		}
	})
}

func (h *UsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	days := DefaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxDays {
			http.Error(w, "days must be between 1 and 365", http.StatusBadRequest)
			return
		}
		days = n
	}

	since := h.now().AddDate(0, 0, -days)
	stats, err := h.Repo.UsageSince(r.Context(), userID, since)
	if err != nil {
		log.WithFields(log.Fields{"user": userID, "error": err}).Error("usage query failed")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	report := UsageReport{Days: days, Since: since, Endpoints: stats}
	for _, s := range stats {
		report.Total += s.Count
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
