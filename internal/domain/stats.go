package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/borctakip/debt-tracker/pkg/utils"
)

// DashboardStats is the aggregate view over one owner's debts. All sums are
// in the base currency so amounts recorded in different currencies stay
// comparable.
type DashboardStats struct {
	TotalOwed           decimal.Decimal `json:"total_owed"`
	TotalToCollect      decimal.Decimal `json:"total_to_collect"`
	NetBalance          decimal.Decimal `json:"net_balance"`
	PersonOweMost       *string         `json:"person_owe_most"`
	PersonOweMostAmount decimal.Decimal `json:"person_owe_most_amount"`
	MostOverdueDebt     *string         `json:"most_overdue_debt"`
	MostOverdueDays     int             `json:"most_overdue_days"`
	ActiveDebtsCount    int             `json:"active_debts_count"`
	OverdueDebtsCount   int             `json:"overdue_debts_count"`
}

// ComputeStats aggregates a snapshot of one owner's debts. It is a pure
// function of the passed-in records and clock: callers must hand it a
// collection obtained in a single consistent read. An empty snapshot yields
// zero totals and no highlighted person or overdue debt.
func ComputeStats(debts []*Debt, now time.Time) DashboardStats {
	stats := DashboardStats{
		TotalOwed:           decimal.Zero,
		TotalToCollect:      decimal.Zero,
		NetBalance:          decimal.Zero,
		PersonOweMostAmount: decimal.Zero,
	}

	perPerson := make(map[string]decimal.Decimal)

	var mostOverdue *Debt
	mostOverdueDays := 0

	for _, debt := range debts {
		if debt.Status == StatusActive {
			stats.ActiveDebtsCount++
		}

		if debt.Status != StatusPaid {
			switch debt.DebtType {
			case DebtTypeIOwe:
				stats.TotalOwed = stats.TotalOwed.Add(debt.AmountBase)
				perPerson[debt.PersonName] = perPerson[debt.PersonName].Add(debt.AmountBase)
			case DebtTypeTheyOwe:
				stats.TotalToCollect = stats.TotalToCollect.Add(debt.AmountBase)
			}
		}

		// Overdue highlighting only considers active debts with a due date
		// strictly in the past.
		if debt.Status == StatusActive && debt.DueDate != nil && utils.IsPastDue(*debt.DueDate, now) {
			stats.OverdueDebtsCount++

			days := utils.DaysBetween(*debt.DueDate, now)
			if mostOverdue == nil || days > mostOverdueDays ||
				(days == mostOverdueDays && debt.AmountBase.GreaterThan(mostOverdue.AmountBase)) {
				mostOverdue = debt
				mostOverdueDays = days
			}
		}
	}

	stats.NetBalance = stats.TotalToCollect.Sub(stats.TotalOwed)

	// Counterparty the owner owes the most to, ties broken by name.
	for name, sum := range perPerson {
		if stats.PersonOweMost == nil ||
			sum.GreaterThan(stats.PersonOweMostAmount) ||
			(sum.Equal(stats.PersonOweMostAmount) && name < *stats.PersonOweMost) {
			n := name
			stats.PersonOweMost = &n
			stats.PersonOweMostAmount = sum
		}
	}

	if mostOverdue != nil {
		label := mostOverdue.Description + " - " + mostOverdue.PersonName
		stats.MostOverdueDebt = &label
		stats.MostOverdueDays = mostOverdueDays
	}

	return stats
}
