package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

type expenseRequest struct {
	// Text is the free-form "category, amount" line. Category and Amount
	// may be given separately instead.
	Text     string `json:"text"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type expenseResponse struct {
	Category           string  `json:"category"`
	Amount             string  `json:"amount"`
	Date               string  `json:"date"`
	PercentOfAllowance float64 `json:"percent_of_allowance"`
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	category, amount := req.Category, req.Amount
	if text := strings.TrimSpace(req.Text); text != "" {
		// Amounts may themselves contain commas ("1,500"), so only the
		// first comma separates category from amount.
		category, amount, _ = strings.Cut(text, ",")
	}

	receipt, err := s.recorder.Record(r.Context(), category, amount)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "record expense failed", "error", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, expenseResponse{
		Category:           receipt.Record.Category,
		Amount:             receipt.Record.Amount.String(),
		Date:               receipt.Record.Date.String(),
		PercentOfAllowance: receipt.PercentOfAllowance,
	})
}

type allowanceResponse struct {
	Date      string `json:"date"`
	Allowance string `json:"allowance"`
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	allowance, err := s.engine.DailyAllowance(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "daily allowance failed", "error", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, allowanceResponse{
		Date:      s.clock.Today().String(),
		Allowance: allowance.String(),
	})
}

type remainingResponse struct {
	Date      string `json:"date"`
	Remaining string `json:"remaining"`
}

func (s *Server) handleRemaining(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	remaining, err := s.engine.RemainingToday(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "remaining today failed", "error", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, remainingResponse{
		Date:      s.clock.Today().String(),
		Remaining: remaining.String(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	allowance, err := s.engine.ResetToConfigured(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "allowance reset failed", "error", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, allowanceResponse{
		Date:      s.clock.Today().String(),
		Allowance: allowance.String(),
	})
}

type clockRequest struct {
	// Date is YYYY-MM-DD, or "reset" to return to the real clock.
	Date string `json:"date"`
}

type clockResponse struct {
	Today      string `json:"today"`
	Overridden bool   `json:"overridden"`
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		_, overridden := s.clock.Overridden()
		writeJSON(w, http.StatusOK, clockResponse{
			Today:      s.clock.Today().String(),
			Overridden: overridden,
		})
	case http.MethodPost:
		var req clockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		if strings.EqualFold(strings.TrimSpace(req.Date), "reset") {
			s.clock.ClearOverride()
			writeJSON(w, http.StatusOK, clockResponse{Today: s.clock.Today().String()})
			return
		}

		if _, err := s.clock.SetOverride(req.Date); err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, clockResponse{
			Today:      s.clock.Today().String(),
			Overridden: true,
		})
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type categoryTotalResponse struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

type statsResponse struct {
	YearMonth  string                  `json:"year_month"`
	Total      string                  `json:"total"`
	Categories []categoryTotalResponse `json:"categories"`
	Report     string                  `json:"report"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := s.stats.MonthlyStats(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "monthly stats failed", "error", err)
		writeFailure(w, err)
		return
	}

	resp := statsResponse{
		YearMonth:  stats.YearMonth,
		Total:      stats.Total.String(),
		Categories: make([]categoryTotalResponse, 0, len(stats.ByCategory)),
		Report:     stats.Report(),
	}
	for _, c := range stats.ByCategory {
		resp.Categories = append(resp.Categories, categoryTotalResponse{
			Name:  c.Name,
			Total: c.Total.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type chartDataResponse struct {
	Dates     []string `json:"dates"`
	Actual    []string `json:"actual"`
	Allowance []string `json:"allowance"`
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	series, err := s.history.Series(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "chart series failed", "error", err)
		writeFailure(w, err)
		return
	}

	resp := chartDataResponse{
		Dates:     make([]string, 0, len(series.Dates)),
		Actual:    make([]string, 0, len(series.Actual)),
		Allowance: make([]string, 0, len(series.Allowance)),
	}
	for i := range series.Dates {
		resp.Dates = append(resp.Dates, series.Dates[i].String())
		resp.Actual = append(resp.Actual, series.Actual[i].String())
		resp.Allowance = append(resp.Allowance, series.Allowance[i].String())
	}
	writeJSON(w, http.StatusOK, resp)
}
