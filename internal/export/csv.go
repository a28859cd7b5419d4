// Package export renders the expense analysis report: a filtered slice of
// the ledger summarized into a multi-section CSV document.
package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"kharcha/internal/core"
)

var ErrNoExpenses = errors.New("no expenses in the selected range")

// Filter selects the ledger records that feed a report. Empty slices mean
// "no restriction"; the description search is a case-insensitive substring
// match.
type Filter struct {
	Start             core.Date
	End               core.Date
	Categories        []core.Category
	Methods           []core.PaymentMethod
	Subcategories     []string
	DescriptionSearch string
}

func (f Filter) matches(e core.Expense) bool {
	if e.Date.Time.Before(f.Start.Time) || e.Date.Time.After(f.End.Time) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, e.Category) {
		return false
	}
	if len(f.Methods) > 0 && !containsMethod(f.Methods, e.PaymentMethod) {
		return false
	}
	if len(f.Subcategories) > 0 && !containsString(f.Subcategories, e.Subcategory) {
		return false
	}
	if f.DescriptionSearch != "" &&
		!strings.Contains(strings.ToLower(e.Description), strings.ToLower(f.DescriptionSearch)) {
		return false
	}
	return true
}

// Apply returns the ledger records selected by the filter, in ledger order.
func Apply(expenses []core.Expense, f Filter) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func containsCategory(cs []core.Category, c core.Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

func containsMethod(ms []core.PaymentMethod, m core.PaymentMethod) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// bucket accumulates a group's total and count in first-seen order.
type bucket struct {
	key      string
	category core.Category
	total    core.Money
	count    int
}

// accumulate folds expenses into per-key buckets, preserving the order keys
// first appear. Ties in a later sort keep this order.
func accumulate(expenses []core.Expense, keyOf func(core.Expense) string) []*bucket {
	index := map[string]*bucket{}
	var order []*bucket
	for _, e := range expenses {
		key := keyOf(e)
		b, ok := index[key]
		if !ok {
			b = &bucket{key: key, category: e.Category}
			index[key] = b
			order = append(order, b)
		}
		b.total = b.total.Add(e.Amount)
		b.count++
	}
	return order
}

func sortByTotalDesc(buckets []*bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].total.Paise > buckets[j].total.Paise
	})
}

// AnalysisCSV renders the six-section analysis report over the given
// expenses and returns it with its download filename. The slice must be
// non-empty; the report's date range is derived from the data itself, not
// the filter that produced it.
func AnalysisCSV(expenses []core.Expense, settings core.Settings, now time.Time) ([]byte, string, error) {
	if len(expenses) == 0 {
		return nil, "", ErrNoExpenses
	}

	start, end := expenses[0].Date, expenses[0].Date
	var total core.Money
	for _, e := range expenses {
		if e.Date.Time.Before(start.Time) {
			start = e.Date
		}
		if e.Date.Time.After(end.Time) {
			end = e.Date
		}
		total = total.Add(e.Amount)
	}

	money := func(m core.Money) string {
		return m.Format(settings.Currency)
	}
	pct := func(part core.Money) string {
		return fmt.Sprintf("%.2f%%", float64(part.Paise)/float64(total.Paise)*100)
	}
	display := func(d core.Date) string {
		return d.Display(settings.DateFormat)
	}

	var w strings.Builder

	// Section 1: overall summary.
	days := int(end.Time.Sub(start.Time).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	avgDaily := core.Money{Paise: total.Paise / int64(days)}
	w.WriteString("EXPENSE ANALYSIS SUMMARY\n")
	w.WriteString("Metric,Value\n")
	fmt.Fprintf(&w, "Total Expenses,%s\n", money(total))
	fmt.Fprintf(&w, "Average Daily Expense,%s\n", money(avgDaily))
	fmt.Fprintf(&w, "Number of Transactions,%d\n", len(expenses))
	fmt.Fprintf(&w, "Date Range,%s to %s\n", display(start), display(end))
	fmt.Fprintf(&w, "Generated On,%s\n\n", display(core.DateOf(now)))

	// Section 2: per-category totals, largest first.
	w.WriteString("CATEGORY SUMMARY\n")
	w.WriteString("Category,Total Amount,Average Amount,Count,Percentage of Total\n")
	categories := accumulate(expenses, func(e core.Expense) string { return string(e.Category) })
	sortByTotalDesc(categories)
	for _, b := range categories {
		avg := core.Money{Paise: b.total.Paise / int64(b.count)}
		fmt.Fprintf(&w, "%s,%s,%s,%d,%s\n", b.key, money(b.total), money(avg), b.count, pct(b.total))
	}
	w.WriteString("\n")

	// Section 3: per-subcategory totals, largest first.
	w.WriteString("SUBCATEGORY SUMMARY\n")
	w.WriteString("Subcategory,Category,Total Amount,Average Amount,Count,Percentage of Total\n")
	subcategories := accumulate(expenses, func(e core.Expense) string { return e.Subcategory })
	sortByTotalDesc(subcategories)
	for _, b := range subcategories {
		avg := core.Money{Paise: b.total.Paise / int64(b.count)}
		fmt.Fprintf(&w, "%s,%s,%s,%s,%d,%s\n", b.key, b.category, money(b.total), money(avg), b.count, pct(b.total))
	}
	w.WriteString("\n")

	// Section 4: per-payment-method totals, largest first.
	w.WriteString("PAYMENT METHOD SUMMARY\n")
	w.WriteString("Payment Method,Total Amount,Count,Percentage of Total\n")
	methods := accumulate(expenses, func(e core.Expense) string { return string(e.PaymentMethod) })
	sortByTotalDesc(methods)
	for _, b := range methods {
		fmt.Fprintf(&w, "%s,%s,%d,%s\n", b.key, money(b.total), b.count, pct(b.total))
	}
	w.WriteString("\n")

	// Section 5: day-by-day breakdown in chronological order.
	w.WriteString("DAILY EXPENSE BREAKDOWN\n")
	byDay := map[core.Date][]core.Expense{}
	var dayOrder []core.Date
	for _, e := range expenses {
		if _, ok := byDay[e.Date]; !ok {
			dayOrder = append(dayOrder, e.Date)
		}
		byDay[e.Date] = append(byDay[e.Date], e)
	}
	sort.Slice(dayOrder, func(i, j int) bool { return dayOrder[i].Time.Before(dayOrder[j].Time) })
	for _, day := range dayOrder {
		dayExpenses := byDay[day]
		var dayTotal core.Money
		for _, e := range dayExpenses {
			dayTotal = dayTotal.Add(e.Amount)
		}

		fmt.Fprintf(&w, "\nDate: %s\n", display(day))
		fmt.Fprintf(&w, "Daily Total: %s\n", money(dayTotal))

		w.WriteString("Category Breakdown:\n")
		dayCategories := accumulate(dayExpenses, func(e core.Expense) string { return string(e.Category) })
		sortByTotalDesc(dayCategories)
		for _, b := range dayCategories {
			fmt.Fprintf(&w, "%s,%s,%.2f%%\n", b.key, money(b.total),
				float64(b.total.Paise)/float64(dayTotal.Paise)*100)
		}

		w.WriteString("Transactions:\n")
		w.WriteString("Category,Subcategory,Amount,Description,Payment Method\n")
		for _, e := range dayExpenses {
			fmt.Fprintf(&w, "%s,%s,%s,\"%s\",%s\n",
				e.Category, e.Subcategory, money(e.Amount), e.Description, e.PaymentMethod)
		}
	}

	// Section 6: the raw records, oldest first.
	w.WriteString("\nALL EXPENSES (RAW DATA)\n")
	w.WriteString("Date,Category,Subcategory,Amount,Description,PaymentMethod\n")
	sorted := append([]core.Expense(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Time.Before(sorted[j].Date.Time) })
	for _, e := range sorted {
		fmt.Fprintf(&w, "%s,%s,%s,%s,\"%s\",%s\n",
			display(e.Date), e.Category, e.Subcategory, money(e.Amount), e.Description, e.PaymentMethod)
	}

	name := fmt.Sprintf("expense_analysis_%s_to_%s.csv", start.FilenameStamp(), end.FilenameStamp())
	return []byte(w.String()), name, nil
}
