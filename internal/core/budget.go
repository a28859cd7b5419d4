package core

// BillType identifies one of the recurring monthly bills tracked per budget
// record.
type BillType string

const (
	BillCreditCard  BillType = "Credit Card"
	BillElectricity BillType = "Electricity"
	BillWaterBill   BillType = "Water Bill"
	BillLaundry     BillType = "Laundry"
	BillSIP         BillType = "SIP"
	BillRent        BillType = "Rent"
)

// Category returns the ledger category a paid bill is recorded under.
// Laundry is a service, everything else a bill.
func (b BillType) Category() Category {
	if b == BillLaundry {
		return CategoryServices
	}
	return CategoryBills
}

// DefaultDescription is the ledger description used when a bill payment is
// recorded without custom text.
func (b BillType) DefaultDescription() string {
	switch b {
	case BillCreditCard:
		return "Monthly credit card bill"
	case BillElectricity:
		return "Monthly electricity bill"
	case BillWaterBill:
		return "Monthly water bill"
	case BillLaundry:
		return "Monthly laundry expense"
	case BillSIP:
		return "Monthly SIP payment"
	case BillRent:
		return "Monthly rent payment"
	}
	return ""
}

func (b BillType) Validate() error {
	switch b {
	case BillCreditCard, BillElectricity, BillWaterBill, BillLaundry, BillSIP, BillRent:
		return nil
	}
	return ErrUnknownBill
}

// MonthlyBudget is the registry record for one (month name, year) key.
// InitialCashBalance and InitialBankBalance are explicit overrides: nil
// means "inherit the settings default", including future changes to it.
// CreditCardUsed is maintained incrementally by the expense commit path and
// is never recomputed from the ledger.
type MonthlyBudget struct {
	Month               string
	Year                int
	TotalBudget         Money
	SIP                 Money
	Rent                Money
	CreditCard          Money
	Electricity         Money
	WaterBill           Money
	Laundry             Money
	CreditCardPaid      bool
	ElectricityPaid     bool
	WaterBillPaid       bool
	LaundryPaid         bool
	SIPPaid             bool
	RentPaid            bool
	SavingsGoal         Money
	HasSavingsGoal      bool
	CreditCardBalance   Money
	CreditCardUsed      Money
	PreviousMonthCredit Money
	InitialCashBalance  *Money `json:",omitempty"`
	InitialBankBalance  *Money `json:",omitempty"`
}

// NewMonthBudget is the single seeding constructor for registry records.
// Every creation path goes through it: total budget is cash+bank, SIP, rent
// and credit limit come from settings, all counters are zero and all paid
// flags false. The savings goal starts disabled; the savings-goal action and
// the monthly reset enable it themselves.
func NewMonthBudget(month string, year int, s Settings) MonthlyBudget {
	return MonthlyBudget{
		Month:             month,
		Year:              year,
		TotalBudget:       s.DefaultCashBalance.Add(s.DefaultBankBalance),
		SIP:               s.DefaultSIP,
		Rent:              s.DefaultRent,
		SavingsGoal:       s.DefaultSavingsGoal,
		HasSavingsGoal:    false,
		CreditCardBalance: s.DefaultCreditLimit,
	}
}

// Key returns the "<MonthName>-<Year>" registry key.
func (b *MonthlyBudget) Key() string {
	return MonthKey(b.Month, b.Year)
}

// ApplyBillPayment records a bill's settled state. For SIP and Rent a
// non-zero amount also becomes the standing amount for the month; the other
// bills store whatever amount was submitted, zero included.
func (b *MonthlyBudget) ApplyBillPayment(bill BillType, amount Money, paid bool) {
	switch bill {
	case BillCreditCard:
		b.CreditCard = amount
		b.CreditCardPaid = paid
	case BillElectricity:
		b.Electricity = amount
		b.ElectricityPaid = paid
	case BillWaterBill:
		b.WaterBill = amount
		b.WaterBillPaid = paid
	case BillLaundry:
		b.Laundry = amount
		b.LaundryPaid = paid
	case BillSIP:
		if amount.Paise > 0 {
			b.SIP = amount
		}
		b.SIPPaid = paid
	case BillRent:
		if amount.Paise > 0 {
			b.Rent = amount
		}
		b.RentPaid = paid
	}
}

// BillPaid reports whether the given bill has been settled this month.
func (b *MonthlyBudget) BillPaid(bill BillType) bool {
	switch bill {
	case BillCreditCard:
		return b.CreditCardPaid
	case BillElectricity:
		return b.ElectricityPaid
	case BillWaterBill:
		return b.WaterBillPaid
	case BillLaundry:
		return b.LaundryPaid
	case BillSIP:
		return b.SIPPaid
	case BillRent:
		return b.RentPaid
	}
	return false
}
