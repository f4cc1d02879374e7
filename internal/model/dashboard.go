package model

import "github.com/shopspring/decimal"

type DashboardSummary struct {
	Expenses DashboardExpenses `json:"expenses"`
	Chores   DashboardChores   `json:"chores"`
	Waste    DashboardWaste    `json:"waste"`
	Bills    DashboardBills    `json:"bills"`
}

type DashboardExpenses struct {
	TotalMonth   decimal.Decimal     `json:"total_month"`
	ExpenseCount int                 `json:"expense_count"`
	AvgExpense   decimal.Decimal     `json:"avg_expense"`
	Budget       decimal.NullDecimal `json:"budget"`
	ByCategory   []ExpenseGroup      `json:"by_category"`
	Recent       []Expense           `json:"recent"`
}

type DashboardChores struct {
	TodayCount   int    `json:"today_count"`
	OverdueCount int    `json:"overdue_count"`
	MyPoints     int    `json:"my_points"`
	NextChore    *Chore `json:"next_chore"`
}

type DashboardWaste struct {
	NextCollection *NextCollection `json:"next_collection"`
}

type DashboardBills struct {
	UpcomingCount int             `json:"upcoming_count"`
	OverdueCount  int             `json:"overdue_count"`
	NextBill      *BillWithStatus `json:"next_bill"`
}
