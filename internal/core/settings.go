package core

import "encoding/json"

// Settings holds the process-wide user defaults. DefaultBudget is always the
// sum of the default cash and bank balances; Normalize recomputes it after
// any load or edit.
type Settings struct {
	Currency             string        `json:"currency"`
	DateFormat           string        `json:"dateFormat"`
	ItemsPerPage         int           `json:"itemsPerPage"`
	DefaultBudget        Money         `json:"defaultBudget"`
	DefaultSIP           Money         `json:"defaultSIP"`
	DefaultRent          Money         `json:"defaultRent"`
	DefaultCreditLimit   Money         `json:"defaultCreditLimit"`
	DefaultPaymentMethod PaymentMethod `json:"defaultPaymentMethod"`
	DefaultCashBalance   Money         `json:"defaultCashBalance"`
	DefaultBankBalance   Money         `json:"defaultBankBalance"`
	DefaultSavingsGoal   Money         `json:"defaultSavingsGoal"`
	CreditCardEnabled    bool          `json:"creditCardEnabled"`
}

// DefaultSettings returns the hardcoded fallback set used when nothing is
// persisted or the persisted blob is unreadable.
func DefaultSettings() Settings {
	s := Settings{
		Currency:             "₹",
		DateFormat:           DateFormatDMY,
		ItemsPerPage:         25,
		DefaultSIP:           FromRupees(2000),
		DefaultRent:          FromRupees(1900),
		DefaultCreditLimit:   FromRupees(10000),
		DefaultPaymentMethod: UPI,
		DefaultCashBalance:   FromRupees(2000),
		DefaultBankBalance:   FromRupees(8000),
		DefaultSavingsGoal:   FromRupees(1000),
		CreditCardEnabled:    true,
	}
	s.Normalize()
	return s
}

// UnmarshalJSON fills fields missing from older persisted blobs with the
// hardcoded defaults instead of zero values, then renormalizes.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	p := plain(DefaultSettings())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Settings(p)
	s.Normalize()
	return nil
}

// Normalize recomputes the derived default budget and fills gaps left by
// older persisted blobs.
func (s *Settings) Normalize() {
	if s.Currency == "" {
		s.Currency = "₹"
	}
	if s.DateFormat == "" {
		s.DateFormat = DateFormatDMY
	}
	if s.ItemsPerPage <= 0 {
		s.ItemsPerPage = 25
	}
	if s.DefaultCashBalance.IsZero() {
		s.DefaultCashBalance = FromRupees(2000)
	}
	if s.DefaultBankBalance.IsZero() {
		s.DefaultBankBalance = FromRupees(8000)
	}
	if s.DefaultPaymentMethod.Validate() != nil {
		s.DefaultPaymentMethod = UPI
	}
	s.DefaultBudget = s.DefaultCashBalance.Add(s.DefaultBankBalance)
}
