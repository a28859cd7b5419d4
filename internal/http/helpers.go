package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/export"
	"kharcha/internal/tracker"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps tracker and validation errors to status codes.
// Affordability and policy rejections are 422: the request was well-formed,
// the ledger state forbids it.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrInsufficientBalance),
		errors.Is(err, tracker.ErrCreditCardDisabled),
		errors.Is(err, tracker.ErrPetrolNotMonday):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, tracker.ErrIndexOutOfRange),
		errors.Is(err, export.ErrNoExpenses):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, tracker.ErrNothingStaged),
		errors.Is(err, tracker.ErrInvalidSnapshot),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptySubcategory),
		errors.Is(err, core.ErrUnknownMethod),
		errors.Is(err, core.ErrCustomTagRequired),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrUnknownBill):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.Date{Time: t}, nil
}

// parseMonthYear extracts month name and year from query parameters,
// defaulting to the current month.
func parseMonthYear(r *http.Request) (string, int) {
	now := time.Now()
	month := now.Month().String()
	year := now.Year()

	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		month = v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	return month, year
}

// parseOptionalAmount treats empty and "0" as zero; anything else must be a
// valid positive amount.
func parseOptionalAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return core.Money{}, nil
	}
	return core.ParseAmount(s)
}

// checkResponse is the wire form of an affordability result.
type checkResponse struct {
	Verdict        string `json:"verdict"`
	RemainingPaise int64  `json:"remainingPaise"`
	AfterPaise     int64  `json:"afterPaise"`
}

func toCheckResponse(res tracker.CheckResult) checkResponse {
	return checkResponse{
		Verdict:        res.Verdict.String(),
		RemainingPaise: res.Remaining.Paise,
		AfterPaise:     res.After.Paise,
	}
}
