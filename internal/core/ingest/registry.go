package ingest

import (
	"strings"

	"financeiro-service/internal/core/textutil"

	"github.com/agnivade/levenshtein"
	"github.com/schollz/closestmatch"
)

// Identificadores de banco conhecidos.
const (
	BankSicredi = "sicredi"
	BankGeneric = "generico"
)

// maxSuggestionDistance limita a sugestão "você quis dizer" a erros de digitação.
const maxSuggestionDistance = 3

var bankAliases = map[string]string{
	"SICREDI":             BankSicredi,
	"748":                 BankSicredi,
	"SICREDI COOPERATIVA": BankSicredi,
	"BANCO SICREDI":       BankSicredi,
	"GENERICO":            BankGeneric,
}

var parsers = map[string]Parser{
	BankSicredi: sicrediParser{},
	BankGeneric: genericParser{},
}

var aliasKeys = func() []string {
	keys := make([]string, 0, len(bankAliases))
	for k := range bankAliases {
		keys = append(keys, k)
	}
	return keys
}()

// resolveBank devolve o identificador canônico e o leitor do banco.
// Bancos desconhecidos usam o leitor genérico (known=false).
func resolveBank(name string) (bank string, parser Parser, known bool) {
	key := textutil.NormalizeText(name)
	if id, ok := bankAliases[key]; ok {
		return id, parsers[id], true
	}
	return BankGeneric, parsers[BankGeneric], false
}

// suggestBank procura um apelido conhecido parecido com o nome informado.
// Serve apenas para mensagens; nunca altera o leitor escolhido.
func suggestBank(name string) string {
	key := textutil.NormalizeText(name)
	if key == "" {
		return ""
	}
	cm := closestmatch.New(aliasKeys, []int{2, 3})
	best, bestDist := "", maxSuggestionDistance+1
	for _, candidate := range cm.ClosestN(key, len(aliasKeys)) {
		if candidate == "" {
			continue
		}
		if d := levenshtein.ComputeDistance(key, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return strings.ToLower(best)
}
