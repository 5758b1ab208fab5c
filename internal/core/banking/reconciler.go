// Package banking derives bank balances and statements from transactions and
// invoice payments. Nothing here is cached; every call replays its sources.
package banking

import (
	"sort"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/core/domain"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// Sources is a consistent view of the collections a statement is built from.
type Sources struct {
	Accounts     []*versioning.Entity[domain.BankAccount]
	Transactions []*versioning.Entity[domain.Transaction]
	Invoices     []*versioning.Entity[domain.Invoice]
}

// movement is one signed cash movement on an account.
type movement struct {
	date        time.Time
	source      domain.StatementSource
	referenceID string
	accountID   string
	description string
	amount      decimal.Decimal // positive is money in
}

// MatchAccounts resolves a filter to the ids of live accounts. An empty filter
// selects every live account; unknown or deleted ids are dropped.
func MatchAccounts(accounts []*versioning.Entity[domain.BankAccount], filter []string) []string {
	wanted := make(map[string]bool, len(filter))
	for _, id := range filter {
		wanted[id] = true
	}
	var out []string
	for _, a := range accounts {
		if a.IsDeleted {
			continue
		}
		if len(filter) == 0 || wanted[a.ID] {
			out = append(out, a.ID)
		}
	}
	return out
}

// OpeningBalance is the initial balance of the matched accounts plus every
// movement on them dated before the day of periodStart.
func OpeningBalance(src Sources, filter []string, periodStart time.Time) decimal.Decimal {
	return openingBalance(src, toSet(MatchAccounts(src.Accounts, filter)), periodStart, domain.AllStatementSources())
}

// openingBalance replays only the record families selected by flags, so a
// filtered statement closes at the opening of the next period under the same flags.
func openingBalance(src Sources, matched map[string]bool, periodStart time.Time, flags domain.StatementFlags) decimal.Decimal {
	balance := decimal.Zero
	for _, a := range src.Accounts {
		if matched[a.ID] {
			balance = balance.Add(a.State.InitialBalance)
		}
	}

	start := dateOf(periodStart)
	for _, m := range movements(src, matched, flags) {
		if dateOf(m.date).Before(start) {
			balance = balance.Add(m.amount)
		}
	}
	return balance
}

// BuildStatement lists the movements of the matched accounts dated within
// [periodStart, periodEnd] by calendar day, oldest first, with a running balance
// seeded at the opening balance of the same record families. Lines on the same
// date keep source order.
func BuildStatement(src Sources, filter []string, periodStart, periodEnd time.Time, flags domain.StatementFlags) domain.BankStatement {
	ids := MatchAccounts(src.Accounts, filter)
	matched := toSet(ids)
	opening := openingBalance(src, matched, periodStart, flags)

	start, end := dateOf(periodStart), dateOf(periodEnd)
	var inPeriod []movement
	for _, m := range movements(src, matched, flags) {
		day := dateOf(m.date)
		if day.Before(start) || day.After(end) {
			continue
		}
		inPeriod = append(inPeriod, m)
	}
	sort.SliceStable(inPeriod, func(i, j int) bool { return dateOf(inPeriod[i].date).Before(dateOf(inPeriod[j].date)) })

	stmt := domain.BankStatement{
		AccountIDs:     ids,
		PeriodStart:    start,
		PeriodEnd:      end,
		OpeningBalance: opening,
		Lines:          make([]domain.StatementLine, 0, len(inPeriod)),
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}
	if stmt.AccountIDs == nil {
		stmt.AccountIDs = []string{}
	}

	running := opening
	for _, m := range inPeriod {
		line := domain.StatementLine{
			Date:           m.date,
			Source:         m.source,
			ReferenceID:    m.referenceID,
			BankAccountRef: m.accountID,
			Description:    m.description,
			Debit:          decimal.Zero,
			Credit:         decimal.Zero,
		}
		if m.amount.IsNegative() {
			line.Debit = m.amount.Neg()
			stmt.TotalDebit = stmt.TotalDebit.Add(line.Debit)
		} else {
			line.Credit = m.amount
			stmt.TotalCredit = stmt.TotalCredit.Add(line.Credit)
		}
		running = running.Add(m.amount)
		line.Balance = running
		stmt.Lines = append(stmt.Lines, line)
	}
	stmt.ClosingBalance = opening.Add(stmt.TotalCredit).Sub(stmt.TotalDebit)
	return stmt
}

// movements collects the signed movements of live records on matched accounts,
// grouped by source: transactions, sales payments, purchase payments, settlements.
func movements(src Sources, matched map[string]bool, flags domain.StatementFlags) []movement {
	var general, sales, purchases, settlements []movement

	for _, t := range src.Transactions {
		if t.IsDeleted || !matched[t.State.BankAccountRef] {
			continue
		}
		m := movement{
			date:        t.State.Date,
			source:      domain.SourceTransaction,
			referenceID: t.ID,
			accountID:   t.State.BankAccountRef,
			description: t.State.Description,
			amount:      accounting.SignedCashFlow(t.State),
		}
		if t.State.Category == domain.CategoryDebtSettlement {
			if flags.DebtSettlements {
				m.source = domain.SourceDebtSettlement
				settlements = append(settlements, m)
			}
			continue
		}
		if flags.Transactions {
			general = append(general, m)
		}
	}

	for _, inv := range src.Invoices {
		if inv.IsDeleted {
			continue
		}
		source := domain.SourceSalesPayment
		if inv.State.Kind == domain.Purchase {
			if !flags.PurchasePayments {
				continue
			}
			source = domain.SourcePurchasePayment
		} else if !flags.SalesPayments {
			continue
		}
		for _, p := range inv.State.Payments {
			if !matched[p.BankAccountRef] {
				continue
			}
			m := movement{
				date:        p.Date,
				source:      source,
				referenceID: inv.ID,
				accountID:   p.BankAccountRef,
				description: paymentDescription(inv),
				amount:      accounting.SignedPayment(inv.State.Kind, p),
			}
			if source == domain.SourcePurchasePayment {
				purchases = append(purchases, m)
			} else {
				sales = append(sales, m)
			}
		}
	}

	out := make([]movement, 0, len(general)+len(sales)+len(purchases)+len(settlements))
	out = append(out, general...)
	out = append(out, sales...)
	out = append(out, purchases...)
	return append(out, settlements...)
}

func paymentDescription(inv *versioning.Entity[domain.Invoice]) string {
	ref := inv.State.Number
	if ref == "" {
		ref = inv.ID
	}
	if inv.State.Kind == domain.Purchase {
		return "Payment for purchase invoice " + ref
	}
	return "Payment for sales invoice " + ref
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
