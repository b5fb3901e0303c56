// Package reconcile concilia títulos PIX do ERP com os créditos PIX do extrato.
package reconcile

import (
	"time"

	"financeiro-service/internal/core/money"
	"financeiro-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Tolerance é a diferença máxima (exclusiva) entre o valor do ERP e o do extrato.
var Tolerance = decimal.RequireFromString("0.02")

// Matcher liga títulos do ERP a créditos do extrato.
// Implementações diferentes (ex.: atribuição ótima) podem substituir a gulosa.
type Matcher interface {
	Match(records []domain.ReceivableRecord, candidates []domain.StatementEntry) domain.ReconciliationReport
}

// GreedyMatcher percorre os títulos na ordem recebida e liga cada um ao primeiro
// crédito ainda livre com a mesma data e valor dentro da tolerância.
// Um crédito usado nunca é reaproveitado e não há retrocesso.
type GreedyMatcher struct {
	now func() time.Time
}

// NewGreedyMatcher cria o conciliador guloso. now define o ano usado em datas DD/MM.
func NewGreedyMatcher(now func() time.Time) *GreedyMatcher {
	if now == nil {
		now = time.Now
	}
	return &GreedyMatcher{now: now}
}

// SettlementDate devolve a data de liquidação, ou o vencimento quando não há liquidação.
func SettlementDate(r domain.ReceivableRecord) string {
	if r.SettlementDate != nil && *r.SettlementDate != "" {
		return *r.SettlementDate
	}
	if r.DueDate != nil {
		return *r.DueDate
	}
	return ""
}

// PaidValue devolve o valor pago (ou líquido) do título, ou o valor do título como fallback.
func PaidValue(r domain.ReceivableRecord) float64 {
	if r.PaidValue != nil {
		return *r.PaidValue
	}
	if r.NetValue != nil {
		return *r.NetValue
	}
	return r.InvoiceValue
}

func (m *GreedyMatcher) Match(records []domain.ReceivableRecord, candidates []domain.StatementEntry) domain.ReconciliationReport {
	now := m.now()
	report := domain.ReconciliationReport{Results: []domain.ReconciliationResult{}}

	candidateDates := make([]string, len(candidates))
	for i, c := range candidates {
		candidateDates[i] = NormalizeDate(c.Date, now)
	}
	used := make([]bool, len(candidates))

	var erpValues, statementValues, differences []float64
	for _, rec := range records {
		if rec.PaymentMethodCode != domain.PaymentMethodPix {
			continue
		}
		result := domain.ReconciliationResult{
			Record:         rec,
			SettlementDate: NormalizeDate(SettlementDate(rec), now),
			PaidValue:      PaidValue(rec),
			StatementIndex: -1,
		}
		erpValues = append(erpValues, result.PaidValue)

		for i, c := range candidates {
			if used[i] || c.Amount == nil {
				continue
			}
			if candidateDates[i] != result.SettlementDate {
				continue
			}
			if !money.Diff(*c.Amount, result.PaidValue).Abs().LessThan(Tolerance) {
				continue
			}
			used[i] = true
			stmt := c
			diff := money.Diff(*c.Amount, result.PaidValue).InexactFloat64()
			result.Statement = &stmt
			result.StatementIndex = i
			result.Difference = &diff
			result.Matched = true
			statementValues = append(statementValues, *c.Amount)
			differences = append(differences, diff)
			break
		}

		if result.Matched {
			report.MatchedCount++
		}
		report.Results = append(report.Results, result)
	}

	report.TotalCount = len(report.Results)
	report.ERPTotal = money.Sum(erpValues...)
	report.StatementTotal = money.Sum(statementValues...)
	report.FeeTotal = money.Diff(report.StatementTotal, report.ERPTotal).InexactFloat64()
	report.MatchedDifference = money.Sum(differences...)
	return report
}
