// Package report aggregates stored transactions for the dashboard.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/finance-tracker/internal/models"
)

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Amount   float64         `json:"amount"`
	Count    int             `json:"count"`
}

// Summary holds income and expense totals for a set of transactions.
type Summary struct {
	Income     float64         `json:"income"`
	Expense    float64         `json:"expense"`
	Net        float64         `json:"net"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"byCategory"`
}

// Summarize totals txs. Sums are kept as decimals and rounded to cents at the
// end. ByCategory covers expenses only, largest first, ties by name.
func Summarize(txs []models.Transaction) Summary {
	var income, expense decimal.Decimal
	perCategory := make(map[models.Category]decimal.Decimal)
	counts := make(map[models.Category]int)

	for _, t := range txs {
		amt := decimal.NewFromFloat(t.Amount)
		switch t.Type {
		case models.TypeIncome:
			income = income.Add(amt)
		case models.TypeExpense:
			expense = expense.Add(amt)
			cat := t.Category
			if cat == "" {
				cat = models.CategoryOther
			}
			perCategory[cat] = perCategory[cat].Add(amt)
			counts[cat]++
		}
	}

	totals := make([]CategoryTotal, 0, len(perCategory))
	for cat, sum := range perCategory {
		totals = append(totals, CategoryTotal{Category: cat, Amount: cents(sum), Count: counts[cat]})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Category < totals[j].Category
	})

	return Summary{
		Income:     cents(income),
		Expense:    cents(expense),
		Net:        cents(income.Sub(expense)),
		Count:      len(txs),
		ByCategory: totals,
	}
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
