package ingest

import (
	"fmt"
	"strings"

	"financeiro-service/internal/core/money"
	"financeiro-service/internal/core/textutil"
	"financeiro-service/internal/domain"
)

// Colunas posicionais do extrato: data, descrição, documento, valor, saldo.
const (
	colDate = iota
	colDescription
	colDocument
	colAmount
	colBalance
)

const (
	sicrediHeaderScanRows = 10
	genericHeaderScanRows = 20
	priorBalanceMarker    = "Saldo Anterior"
)

// Parser converte as linhas da primeira planilha em cabeçalho + lançamentos.
type Parser interface {
	Parse(rows []sheetRow, rc *rowContext) (domain.StatementHeader, []domain.StatementEntry, error)
}

// rowContext acumula identificação do arquivo e avisos de coerção durante a leitura.
type rowContext struct {
	bank     string
	file     string
	fileIdx  int
	warnings []domain.ParseWarning
}

func (rc *rowContext) warn(row, col int, value, msg string) {
	rc.warnings = append(rc.warnings, domain.ParseWarning{
		File:    rc.file,
		Row:     row,
		Column:  col,
		Value:   value,
		Message: msg,
	})
}

func (rc *rowContext) entryID(row int) string {
	return fmt.Sprintf("%s-%d-%d", rc.bank, rc.fileIdx, row)
}

// parseMoney converte a célula e registra aviso quando o texto não é numérico.
// Células numéricas chegam como float64 e não passam pelas regras de texto.
func (rc *rowContext) parseMoney(row sheetRow, rowIdx, col int) float64 {
	v, ok := money.Parse(row.value(col))
	if !ok {
		rc.warn(rowIdx, col, row.text(col), "valor monetário inválido; considerado 0")
	}
	return v
}

// parseOptionalMoney é como parseMoney, mas devolve nil para célula vazia.
func (rc *rowContext) parseOptionalMoney(row sheetRow, rowIdx, col int) *float64 {
	if row.text(col) == "" {
		return nil
	}
	v := rc.parseMoney(row, rowIdx, col)
	return &v
}

// positionalEntry monta um lançamento a partir das colunas 0..4.
func (rc *rowContext) positionalEntry(row sheetRow, rowIdx int) domain.StatementEntry {
	amount := rc.parseMoney(row, rowIdx, colAmount)
	return domain.StatementEntry{
		ID:          rc.entryID(rowIdx),
		Date:        row.text(colDate),
		Description: row.text(colDescription),
		Document:    row.text(colDocument),
		Amount:      &amount,
		Balance:     rc.parseOptionalMoney(row, rowIdx, colBalance),
		Kind:        domain.KindFromAmount(&amount),
		Source:      rc.file,
	}
}

func isBlankRow(row sheetRow) bool {
	return row.text(colDate) == "" && row.text(colDescription) == ""
}

// ---------------------- SICREDI ----------------------

// rótulos de cabeçalho do extrato Sicredi, comparados com a primeira célula
var sicrediHeaderLabels = map[string]func(h *domain.StatementHeader, v string){
	"Associado:":   func(h *domain.StatementHeader, v string) { h.AccountHolder = v },
	"Cooperativa:": func(h *domain.StatementHeader, v string) { h.Branch = v },
	"Conta:":       func(h *domain.StatementHeader, v string) { h.AccountNumber = v },
	"Período:":     func(h *domain.StatementHeader, v string) { h.Period = v },
}

type sicrediParser struct{}

func (sicrediParser) Parse(rows []sheetRow, rc *rowContext) (domain.StatementHeader, []domain.StatementEntry, error) {
	var header domain.StatementHeader

	maxRows := sicrediHeaderScanRows
	if len(rows) < maxRows {
		maxRows = len(rows)
	}
	for i := 0; i < maxRows; i++ {
		setter, ok := sicrediHeaderLabels[rows[i].text(0)]
		if !ok {
			continue
		}
		setter(&header, firstValueAfter(rows[i], 0))
	}

	headerRow := -1
	for i, row := range rows {
		if row.text(colDate) == "Data" && row.text(colDescription) == "Descrição" {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return header, nil, &domain.FormatError{File: rc.file, Reason: "cabeçalho 'Data'/'Descrição' não encontrado"}
	}

	var prior *domain.StatementEntry
	var entries []domain.StatementEntry
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if row.text(colDescription) == priorBalanceMarker {
			if prior != nil {
				rc.warn(i, colDescription, priorBalanceMarker, "saldo anterior repetido ignorado")
				continue
			}
			prior = &domain.StatementEntry{
				ID:          rc.entryID(i),
				Date:        row.text(colDate),
				Description: priorBalanceMarker,
				Balance:     rc.parseOptionalMoney(row, i, colBalance),
				Kind:        domain.KindBalance,
				Source:      rc.file,
			}
			continue
		}
		if isBlankRow(row) {
			continue
		}
		entries = append(entries, rc.positionalEntry(row, i))
	}

	if prior != nil {
		entries = append([]domain.StatementEntry{*prior}, entries...)
	}
	return header, entries, nil
}

func firstValueAfter(row sheetRow, col int) string {
	for j := col + 1; j < len(row); j++ {
		if v := row.text(j); v != "" {
			return v
		}
	}
	return ""
}

// ---------------------- GENÉRICO ----------------------

// genericParser é usado para bancos sem leitor dedicado. As posições de coluna
// seguem o layout Sicredi e não foram validadas com arquivos de outros bancos.
type genericParser struct{}

var genericHeaderHints = []string{"data", "date", "descri"}

func (genericParser) Parse(rows []sheetRow, rc *rowContext) (domain.StatementHeader, []domain.StatementEntry, error) {
	headerRow := findGenericHeaderRow(rows)

	var entries []domain.StatementEntry
	for i := headerRow + 1; i < len(rows); i++ {
		if isBlankRow(rows[i]) {
			continue
		}
		entries = append(entries, rc.positionalEntry(rows[i], i))
	}
	return domain.StatementHeader{}, entries, nil
}

func findGenericHeaderRow(rows []sheetRow) int {
	maxRows := genericHeaderScanRows
	if len(rows) < maxRows {
		maxRows = len(rows)
	}
	for i := 0; i < maxRows; i++ {
		for _, c := range rows[i] {
			lower := textutil.FoldLower(c.text)
			for _, hint := range genericHeaderHints {
				if strings.Contains(lower, hint) {
					return i
				}
			}
		}
	}
	return 0
}
