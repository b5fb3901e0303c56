package summary

import (
	"financeiro-service/internal/core/money"
	"financeiro-service/internal/domain"
)

// Summarize calcula os totais sobre as linhas visíveis (filtered).
// O saldo final vem sempre do lote completo (all): o último saldo preenchido e
// diferente de zero, independentemente do filtro ativo.
func Summarize(filtered, all []domain.StatementEntry) domain.Summary {
	var s domain.Summary
	var credits, debits []float64
	for _, e := range filtered {
		if e.Kind == domain.KindBalance || e.Amount == nil {
			continue
		}
		switch v := *e.Amount; {
		case v > 0:
			credits = append(credits, v)
			s.CreditCount++
		case v < 0:
			debits = append(debits, -v)
			s.DebitCount++
		}
	}
	s.TotalCredits = money.Sum(credits...)
	s.TotalDebits = money.Sum(debits...)
	s.FinalBalance = FinalBalance(all)
	return s
}

// FinalBalance percorre o lote de trás para frente e devolve o primeiro saldo não nulo e não zero.
func FinalBalance(entries []domain.StatementEntry) *float64 {
	for i := len(entries) - 1; i >= 0; i-- {
		b := entries[i].Balance
		if b != nil && *b != 0 {
			v := *b
			return &v
		}
	}
	return nil
}
