package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	statsCacheKey = "dashboard"
)

// handleDashboardStats serves the cached point-in-time summary,
// recomputing it from the store on a miss.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	if stats, found := s.statsCache.Get(statsCacheKey); found {
		writeJSON(w, http.StatusOK, stats)
		return
	}

	stats, err := s.reports.DashboardStats(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "dashboard stats")
		return
	}

	s.statsCache.Set(statsCacheKey, stats)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := reportYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year")
		return
	}

	key := strconv.Itoa(year)
	if rows, found := s.monthlyCache.Get(key); found {
		writeJSON(w, http.StatusOK, rows)
		return
	}

	rows, err := s.reports.MonthlySeries(r.Context(), year)
	if err != nil {
		writeDomainError(w, r, err, "monthly report")
		return
	}

	s.monthlyCache.Set(key, rows)
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	year, err := reportYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year")
		return
	}

	key := strconv.Itoa(year)
	if totals, found := s.categoryCache.Get(key); found {
		writeJSON(w, http.StatusOK, totals)
		return
	}

	totals, err := s.reports.CategoryBreakdown(r.Context(), year)
	if err != nil {
		writeDomainError(w, r, err, "category report")
		return
	}

	s.categoryCache.Set(key, totals)
	writeJSON(w, http.StatusOK, totals)
}

// reportYear parses ?year=, defaulting to the current year.
func reportYear(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if v == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1970 || year > 9999 {
		return 0, strconv.ErrSyntax
	}
	return year, nil
}
