// Package money converte valores monetários em notação brasileira (R$ 1.234,56).
package money

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var plainNumberRegex = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// Parse interpreta um valor de célula como número.
// Valores numéricos passam inalterados. Textos aceitam "R$", espaços, parênteses
// (negativo), sinal de menos no início ou no fim, separador de milhar e vírgula
// decimal. Quando o texto não é um número o resultado é 0 e ok=false; nunca falha.
func Parse(v any) (value float64, ok bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case string:
		return ParseString(n)
	default:
		return 0, false
	}
}

// ParseString é a versão de Parse para texto.
func ParseString(val string) (float64, bool) {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0, true
	}
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, true
	}

	// tratar sinais/parenteses
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	} else if strings.HasSuffix(s, "-") {
		neg = true
		s = strings.TrimSuffix(s, "-")
	}
	s = strings.TrimPrefix(s, "+")

	s = normalizeSeparators(s)
	if !plainNumberRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// normalizeSeparators deixa apenas o ponto como separador decimal.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastComma > lastDot:
		// 1.234,56 -> 1234.56
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastDot > lastComma && lastComma != -1:
		// 1,234.56 -> 1234.56
		return strings.ReplaceAll(s, ",", "")
	case lastDot != -1:
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
		// um único ponto seguido de três dígitos é separador de milhar (1.234)
		if len(s)-lastDot-1 == 3 {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	default:
		return s
	}
}

// Round arredonda para duas casas decimais.
func Round(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// FormatDecimal formata o valor como "1.234,56" (sem símbolo).
func FormatDecimal(v float64) string {
	return brPrinter.Sprintf("%.2f", Round(v))
}

// FormatBRL formata o valor como "R$ 1.234,56" ou "R$ -1.234,56".
func FormatBRL(v float64) string {
	return "R$ " + FormatDecimal(v)
}

// Sum soma os valores com aritmética decimal, evitando acúmulo de erro de ponto flutuante.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// Diff devolve a - b calculado em decimal.
func Diff(a, b float64) decimal.Decimal {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b))
}
