package core

import (
	"encoding/json"
	"testing"
)

func TestNewMonthBudgetSeeding(t *testing.T) {
	s := DefaultSettings()
	b := NewMonthBudget("June", 2025, s)

	if b.TotalBudget != s.DefaultCashBalance.Add(s.DefaultBankBalance) {
		t.Fatalf("TotalBudget = %d, want cash+bank", b.TotalBudget.Paise)
	}
	if b.SIP != s.DefaultSIP || b.Rent != s.DefaultRent {
		t.Fatalf("SIP/Rent not seeded from settings")
	}
	if b.CreditCardBalance != s.DefaultCreditLimit {
		t.Fatalf("credit limit not seeded")
	}
	if !b.CreditCardUsed.IsZero() {
		t.Fatalf("CreditCardUsed must start at zero")
	}
	if b.HasSavingsGoal {
		t.Fatalf("lazy-created records start with savings goal disabled")
	}
	if b.SIPPaid || b.RentPaid || b.CreditCardPaid || b.ElectricityPaid || b.WaterBillPaid || b.LaundryPaid {
		t.Fatalf("all paid flags must start false")
	}
	if b.InitialCashBalance != nil || b.InitialBankBalance != nil {
		t.Fatalf("overrides must start absent")
	}
	if b.Key() != "June-2025" {
		t.Fatalf("Key = %q", b.Key())
	}
}

func TestApplyBillPayment(t *testing.T) {
	s := DefaultSettings()
	b := NewMonthBudget("June", 2025, s)

	b.ApplyBillPayment(BillElectricity, FromRupees(750), true)
	if !b.ElectricityPaid || b.Electricity != FromRupees(750) {
		t.Fatalf("electricity payment not recorded")
	}

	// SIP with a non-zero amount overwrites the standing amount.
	b.ApplyBillPayment(BillSIP, FromRupees(2500), true)
	if !b.SIPPaid || b.SIP != FromRupees(2500) {
		t.Fatalf("SIP amount should be overwritten, got %d", b.SIP.Paise)
	}

	// Rent marked paid with zero amount keeps the standing amount.
	standing := b.Rent
	b.ApplyBillPayment(BillRent, Money{}, true)
	if !b.RentPaid || b.Rent != standing {
		t.Fatalf("zero-amount rent payment must not clobber standing amount")
	}

	for _, bill := range []BillType{BillElectricity, BillSIP, BillRent} {
		if !b.BillPaid(bill) {
			t.Fatalf("%s should report paid", bill)
		}
	}
	if b.BillPaid(BillLaundry) {
		t.Fatalf("laundry not paid yet")
	}
}

func TestMonthlyBudgetOverrideRoundTrip(t *testing.T) {
	s := DefaultSettings()
	b := NewMonthBudget("June", 2025, s)
	cash := FromRupees(3000)
	b.InitialCashBalance = &cash

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back MonthlyBudget
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.InitialCashBalance == nil || *back.InitialCashBalance != cash {
		t.Fatalf("cash override lost in round trip")
	}
	if back.InitialBankBalance != nil {
		t.Fatalf("absent bank override must stay absent, got %v", *back.InitialBankBalance)
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := DefaultSettings()
	if s.DefaultBudget != FromRupees(10000) {
		t.Fatalf("default budget = %d, want 10000 rupees", s.DefaultBudget.Paise)
	}

	s.DefaultCashBalance = FromRupees(5000)
	s.Normalize()
	if s.DefaultBudget != FromRupees(13000) {
		t.Fatalf("budget must track cash+bank, got %d", s.DefaultBudget.Paise)
	}
}

func TestSettingsUnmarshalFillsMissingFields(t *testing.T) {
	var s Settings
	if err := json.Unmarshal([]byte(`{"defaultCashBalance":300000}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !s.CreditCardEnabled {
		t.Fatalf("missing creditCardEnabled should default to true")
	}
	if s.DefaultCashBalance != FromRupees(3000) {
		t.Fatalf("explicit cash balance lost")
	}
	if s.DefaultBudget != FromRupees(3000).Add(FromRupees(8000)) {
		t.Fatalf("default budget not recomputed on load, got %d", s.DefaultBudget.Paise)
	}
	if s.DefaultSIP != FromRupees(2000) {
		t.Fatalf("missing SIP should pick up the hardcoded default")
	}
}
