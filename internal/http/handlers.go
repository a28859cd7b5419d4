package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/export"
	"kharcha/internal/tracker"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Tracker().Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := s.service.Tracker().UpdateSettings(r.Context(), settings)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses := s.service.Tracker().Expenses()
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid index: %w", err))
		return
	}
	if err := s.service.Tracker().DeleteExpense(r.Context(), index); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type foodRequest struct {
	Date          string `json:"date"`
	Source        string `json:"source"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
}

func (s *Server) handleAddFood(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.service.AddFoodExpense(r.Context(), date, req.Source, req.Description,
		amount, core.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCheckResponse(res))
}

type petrolRequest struct {
	Date          string `json:"date"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
}

func (s *Server) handleAddPetrol(w http.ResponseWriter, r *http.Request) {
	var req petrolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.service.AddPetrolExpense(r.Context(), date, req.Description,
		amount, core.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCheckResponse(res))
}

type billRequest struct {
	Bill          string `json:"bill"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
}

func (s *Server) handleAddBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.service.AddBillExpense(r.Context(), core.BillType(req.Bill), date,
		amount, core.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCheckResponse(res))
}

type stageMiscRequest struct {
	Amount        string `json:"amount"`
	Tag           string `json:"tag"`
	CustomTag     string `json:"customTag"`
	Description   string `json:"description"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"paymentMethod"`
}

func (s *Server) handleStageMisc(w http.ResponseWriter, r *http.Request) {
	var req stageMiscRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	err = s.service.Tracker().StageMiscEntry(amount, req.Tag, req.CustomTag,
		req.Description, req.Notes, core.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.service.Tracker().StagedEntries())
}

func (s *Server) handleListStaged(w http.ResponseWriter, r *http.Request) {
	staged := s.service.Tracker().StagedEntries()
	if staged == nil {
		staged = []core.MiscEntry{}
	}
	writeJSON(w, http.StatusOK, staged)
}

func (s *Server) handleRemoveStaged(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid index: %w", err))
		return
	}
	if err := s.service.Tracker().RemoveStagedEntry(index); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commitStagedRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleCommitStaged(w http.ResponseWriter, r *http.Request) {
	var req commitStagedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := s.service.CommitStagedEntries(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	warnings := map[string]checkResponse{}
	for method, res := range results {
		warnings[string(method)] = toCheckResponse(res)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"warnings": warnings})
}

type markPaidRequest struct {
	Bill  string `json:"bill"`
	Month string `json:"month"`
	Year  int    `json:"year"`
}

func (s *Server) handleMarkBillPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	err := s.service.Tracker().MarkBillPaid(r.Context(), core.BillType(req.Bill), req.Month, req.Year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type budgetRequest struct {
	Month               string `json:"month"`
	Year                int    `json:"year"`
	InitialCashBalance  string `json:"initialCashBalance"`
	InitialBankBalance  string `json:"initialBankBalance"`
	SavingsGoal         string `json:"savingsGoal"`
	CreditCardLimit     string `json:"creditCardLimit"`
	PreviousMonthCredit string `json:"previousMonthCredit"`
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	edit := tracker.BudgetEdit{Month: req.Month, Year: req.Year}
	var err error
	if edit.InitialCashBalance, err = parseOptionalAmount(req.InitialCashBalance); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if edit.InitialBankBalance, err = parseOptionalAmount(req.InitialBankBalance); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if edit.SavingsGoal, err = parseOptionalAmount(req.SavingsGoal); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if edit.CreditCardLimit, err = parseOptionalAmount(req.CreditCardLimit); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if edit.PreviousMonthCredit, err = parseOptionalAmount(req.PreviousMonthCredit); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.service.Tracker().UpdateBudget(r.Context(), edit); err != nil {
		writeDomainError(w, err)
		return
	}
	mb, _ := s.service.Tracker().MonthBudget(req.Month, req.Year)
	writeJSON(w, http.StatusOK, mb)
}

type savingsGoalRequest struct {
	Month   string `json:"month"`
	Year    int    `json:"year"`
	Enabled bool   `json:"enabled"`
	Amount  string `json:"amount"`
}

func (s *Server) handleSetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var req savingsGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var amount core.Money
	if req.Enabled {
		var err error
		if amount, err = core.ParseAmount(req.Amount); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if err := s.service.Tracker().SetSavingsGoal(r.Context(), req.Month, req.Year, req.Enabled, amount); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month, year := parseMonthYear(r)
	writeJSON(w, http.StatusOK, s.service.Tracker().BudgetDetails(month, year))
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	month, year := parseMonthYear(r)
	writeJSON(w, http.StatusOK, s.service.Tracker().CurrentBalances(month, year))
}

func (s *Server) handleAffordability(w http.ResponseWriter, r *http.Request) {
	month, year := parseMonthYear(r)
	amount, err := core.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	method := core.PaymentMethod(r.URL.Query().Get("method"))
	if err := method.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res := s.service.Tracker().CheckAffordability(month, year, amount, method)
	writeJSON(w, http.StatusOK, toCheckResponse(res))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.service.Tracker().ExportSnapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.service.ImportSnapshot(r.Context(), body); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": len(s.service.Tracker().Expenses()),
		"budgets":  len(s.service.Tracker().Budgets()),
	})
}

func (s *Server) handleAnalysisCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	end, err := parseDate(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	filter := export.Filter{
		Start:             start,
		End:               end,
		DescriptionSearch: q.Get("q"),
	}
	for _, c := range splitParam(q.Get("categories")) {
		filter.Categories = append(filter.Categories, core.Category(c))
	}
	for _, m := range splitParam(q.Get("methods")) {
		filter.Methods = append(filter.Methods, core.PaymentMethod(m))
	}
	filter.Subcategories = splitParam(q.Get("subcategories"))

	selected := export.Apply(s.service.Tracker().Expenses(), filter)
	data, name, err := export.AnalysisCSV(selected, s.service.Tracker().Settings(), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func splitParam(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
