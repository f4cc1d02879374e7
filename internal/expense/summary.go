// Package expense records household spending and aggregates it.
package expense

import (
	"sort"
	"strings"

	"github.com/dukerupert/housy/internal/model"
	"github.com/shopspring/decimal"
)

const (
	UncategorizedKey   = "uncategorized"
	UncategorizedName  = "Senza categoria"
	UncategorizedColor = "#6b7280"
)

// Summarize totals expenses and groups them by category and by user.
// Groups are sorted by total descending; equal totals keep first-seen order.
func Summarize(expenses []model.Expense) model.ExpenseSummary {
	sum := model.ExpenseSummary{
		Total:      decimal.Zero,
		Average:    decimal.Zero,
		ByCategory: []model.ExpenseGroup{},
		ByUser:     []model.ExpenseGroup{},
	}
	if len(expenses) == 0 {
		return sum
	}

	byCat := newGrouper()
	byUser := newGrouper()
	for _, e := range expenses {
		sum.Total = sum.Total.Add(e.Amount)

		key, name, color := UncategorizedKey, UncategorizedName, UncategorizedColor
		if e.CategoryID != nil {
			key = e.CategoryID.String()
			if e.CategoryName != "" {
				name = e.CategoryName
			}
			if e.CategoryColor != "" {
				color = e.CategoryColor
			}
		}
		byCat.add(key, name, color, e.Amount)
		byUser.add(e.UserID.String(), userLabel(e.UserName), "", e.Amount)
	}

	sum.Count = len(expenses)
	sum.Average = sum.Total.Div(decimal.NewFromInt(int64(sum.Count))).Round(2)
	sum.ByCategory = byCat.sorted()
	sum.ByUser = byUser.sorted()
	return sum
}

type grouper struct {
	order  []string
	groups map[string]*model.ExpenseGroup
}

func newGrouper() *grouper {
	return &grouper{groups: make(map[string]*model.ExpenseGroup)}
}

func (g *grouper) add(key, name, color string, amount decimal.Decimal) {
	grp, ok := g.groups[key]
	if !ok {
		grp = &model.ExpenseGroup{Key: key, Name: name, Color: color, Total: decimal.Zero}
		g.groups[key] = grp
		g.order = append(g.order, key)
	}
	grp.Total = grp.Total.Add(amount)
	grp.Count++
}

func (g *grouper) sorted() []model.ExpenseGroup {
	out := make([]model.ExpenseGroup, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, *g.groups[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// userLabel turns a stored name or email into something readable.
func userLabel(name string) string {
	if name == "" {
		return "Utente"
	}
	if i := strings.IndexByte(name, '@'); i > 0 {
		return name[:i]
	}
	return name
}
