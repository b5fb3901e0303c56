// Package classify agrupa os lançamentos do extrato em categorias de crédito
// e em grupos de débito por descrição.
package classify

import (
	"sort"
	"strings"

	"financeiro-service/internal/core/money"
	"financeiro-service/internal/core/textutil"
	"financeiro-service/internal/domain"
)

// rule é um predicado de categoria: todos os trechos precisam aparecer na descrição normalizada.
type rule struct {
	category domain.Category
	label    string
	contains []string
}

// A ordem importa: a primeira regra que casar define a categoria.
var creditRules = []rule{
	{domain.CategoryPix, "PIX", []string{"PIX"}},
	{domain.CategoryRedeDebito, "Rede Débito", []string{"REDE", "DEBITO"}},
	{domain.CategoryCieloDebito, "Cielo Débito", []string{"CIELO", "DEBITO"}},
	{domain.CategoryRedeAntecipacao, "Rede Antecipação", []string{"REDE", "ANTECIP"}},
	{domain.CategoryDepositoDinheiro, "Depósito em Dinheiro", []string{"DEPOSITO", "DINHEIRO"}},
	{domain.CategoryLiquidacaoCobranca, "Liquidação Cobrança Simples", []string{"LIQUIDACAO", "COBRANCA"}},
	{domain.CategoryRedeCredito, "Rede Crédito", []string{"REDE", "CREDITO", "VENDA"}},
}

const otherLabel = "Outros Créditos"

// Result é a classificação completa de um conjunto de lançamentos.
type Result struct {
	Credits      []domain.CategoryBucket `json:"credits"`
	Debits       []domain.DebitGroup     `json:"debits"`
	TotalCredits float64                 `json:"total_credits"`
	TotalDebits  float64                 `json:"total_debits"`
}

// Bucket devolve o grupo da categoria (vazio quando não existe).
func (r Result) Bucket(c domain.Category) domain.CategoryBucket {
	for _, b := range r.Credits {
		if b.Category == c {
			return b
		}
	}
	return domain.CategoryBucket{Category: c}
}

// Categorize devolve a categoria de um crédito pela descrição.
func Categorize(description string) domain.Category {
	norm := textutil.NormalizeText(description)
	for _, r := range creditRules {
		if matchesAll(norm, r.contains) {
			return r.category
		}
	}
	return domain.CategoryOutros
}

func matchesAll(s string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

// Classify separa créditos por categoria e agrupa débitos pela descrição exata.
// Todas as categorias aparecem no resultado, na ordem das regras, mesmo vazias.
func Classify(entries []domain.StatementEntry) Result {
	buckets := make([]domain.CategoryBucket, 0, len(creditRules)+1)
	index := make(map[domain.Category]int, len(creditRules)+1)
	for _, r := range creditRules {
		index[r.category] = len(buckets)
		buckets = append(buckets, domain.CategoryBucket{Category: r.category, Label: r.label})
	}
	index[domain.CategoryOutros] = len(buckets)
	buckets = append(buckets, domain.CategoryBucket{Category: domain.CategoryOutros, Label: otherLabel})

	creditValues := make([][]float64, len(buckets))
	debitIndex := make(map[string]int)
	var debits []domain.DebitGroup
	var debitValues [][]float64

	for _, e := range entries {
		if e.Kind == domain.KindBalance || e.Amount == nil {
			continue
		}
		amount := *e.Amount
		switch {
		case amount > 0:
			i := index[Categorize(e.Description)]
			buckets[i].Entries = append(buckets[i].Entries, e)
			creditValues[i] = append(creditValues[i], amount)
		case amount < 0:
			desc := strings.TrimSpace(e.Description)
			i, ok := debitIndex[desc]
			if !ok {
				i = len(debits)
				debitIndex[desc] = i
				debits = append(debits, domain.DebitGroup{Description: desc})
				debitValues = append(debitValues, nil)
			}
			debits[i].Count++
			debitValues[i] = append(debitValues[i], -amount)
		}
	}

	var allCredits, allDebits []float64
	for i := range buckets {
		buckets[i].Count = len(buckets[i].Entries)
		buckets[i].Total = money.Sum(creditValues[i]...)
		if buckets[i].Count > 0 {
			buckets[i].Average = money.Round(buckets[i].Total / float64(buckets[i].Count))
		}
		allCredits = append(allCredits, creditValues[i]...)
	}
	for i := range debits {
		debits[i].Total = money.Sum(debitValues[i]...)
		allDebits = append(allDebits, debitValues[i]...)
	}
	sort.SliceStable(debits, func(i, j int) bool {
		if debits[i].Total != debits[j].Total {
			return debits[i].Total > debits[j].Total
		}
		return debits[i].Description < debits[j].Description
	})

	return Result{
		Credits:      buckets,
		Debits:       debits,
		TotalCredits: money.Sum(allCredits...),
		TotalDebits:  money.Sum(allDebits...),
	}
}

// PixCredits devolve os créditos classificados como PIX, na ordem original.
func PixCredits(entries []domain.StatementEntry) []domain.StatementEntry {
	return Classify(entries).Bucket(domain.CategoryPix).Entries
}
