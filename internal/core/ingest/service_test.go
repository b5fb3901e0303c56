package ingest

import (
	"bytes"
	"errors"
	"testing"

	"financeiro-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func sicrediRows() [][]any {
	return [][]any{
		{"Extrato de conta corrente"},
		{"Associado:", "", "LOJA EXEMPLO LTDA"},
		{"Cooperativa:", "0101"},
		{"Conta:", "12345-6"},
		{"Período:", "01/01/2024 a 31/01/2024"},
		{""},
		{"Data", "Descrição", "Documento", "Valor (R$)", "Saldo (R$)"},
		{"", "Saldo Anterior", "", "", "1.000,00"},
		{"02/01/2024", "PIX RECEBIDO JOAO", "PIX001", "150,00", "1.150,00"},
		{"02/01/2024", "TARIFA BANCARIA", "", "-12,50", "1.137,50"},
		{"", "", "", "", ""},
		{"03/01/2024", "AJUSTE", "", "0,00", ""},
		{"03/01/2024", "REDE DEBITO MASTER", "", "R$ 80,00", "1.217,50"},
	}
}

func TestSicrediParser(t *testing.T) {
	svc := NewService(nil)

	header, entries, warnings, err := svc.ParseFile(File{Name: "jan.xlsx", Reader: buildWorkbook(t, sicrediRows())}, "Sicredi")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, domain.StatementHeader{
		AccountHolder: "LOJA EXEMPLO LTDA",
		Branch:        "0101",
		AccountNumber: "12345-6",
		Period:        "01/01/2024 a 31/01/2024",
	}, header)

	require.Len(t, entries, 5)

	prior := entries[0]
	assert.Equal(t, domain.KindBalance, prior.Kind)
	assert.Nil(t, prior.Amount)
	require.NotNil(t, prior.Balance)
	assert.Equal(t, 1000.0, *prior.Balance)

	assert.Equal(t, "sicredi-0-8", entries[1].ID)
	assert.Equal(t, "PIX RECEBIDO JOAO", entries[1].Description)
	assert.Equal(t, "PIX001", entries[1].Document)
	assert.Equal(t, 150.0, entries[1].Value())
	assert.Equal(t, domain.KindCredit, entries[1].Kind)

	assert.Equal(t, domain.KindDebit, entries[2].Kind)
	assert.Equal(t, -12.5, entries[2].Value())

	assert.Equal(t, domain.KindNeutral, entries[3].Kind)
	assert.Nil(t, entries[3].Balance)

	assert.Equal(t, 80.0, entries[4].Value())
}

func TestSicrediParserWithoutTableHeader(t *testing.T) {
	rows := [][]any{
		{"Dia", "Histórico", "Doc", "Valor", "Saldo"},
		{"01/02/2024", "PIX RECEBIDO", "1", "100,00", "100,00"},
		{"02/02/2024", "TARIFA", "", "-5,00", "95,00"},
	}
	svc := NewService(nil)

	_, _, _, err := svc.ParseFile(File{Name: "sem-cabecalho.xlsx", Reader: buildWorkbook(t, rows)}, "sicredi")
	var formatErr *domain.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "sem-cabecalho.xlsx", formatErr.File)

	// o mesmo arquivo pelo leitor genérico usa a linha 0 como cabeçalho
	_, entries, _, err := svc.ParseFile(File{Name: "sem-cabecalho.xlsx", Reader: buildWorkbook(t, rows)}, "banco qualquer")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "generico-0-1", entries[0].ID)
	assert.Equal(t, 100.0, entries[0].Value())
	assert.Equal(t, domain.KindDebit, entries[1].Kind)
}

// numericWorkbook grava valores e saldos como números, com formatos de exibição variados.
func numericWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	rows := [][]any{
		{"Associado:", "LOJA NUMERICA"},
		{"Data", "Descrição", "Documento", "Valor", "Saldo"},
		{"", "Saldo Anterior", "", "", 1000.0},
		{"10/01/2024", "PIX RECEBIDO A", "", 12.345, 1012.345},
		{"10/01/2024", "PIX RECEBIDO B", "", 1500.0, 2512.345},
		{"11/01/2024", "TARIFA", "", "1.234,56-", ""},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}

	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	require.NoError(t, err)
	twoPlaces, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "D5", "D5", thousands))
	require.NoError(t, f.SetCellStyle(sheet, "E3", "E5", twoPlaces))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestSicrediParserKeepsNumericCellValues(t *testing.T) {
	_, entries, warnings, err := NewService(nil).ParseFile(File{Name: "num.xlsx", Reader: numericWorkbook(t)}, "sicredi")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, entries, 4)

	require.NotNil(t, entries[0].Balance)
	assert.Equal(t, 1000.0, *entries[0].Balance)

	assert.Equal(t, "PIX RECEBIDO A", entries[1].Description)
	assert.Equal(t, 12.345, entries[1].Value())
	require.NotNil(t, entries[1].Balance)
	assert.Equal(t, 1012.345, *entries[1].Balance)

	assert.Equal(t, "PIX RECEBIDO B", entries[2].Description)
	assert.Equal(t, 1500.0, entries[2].Value())
	require.NotNil(t, entries[2].Balance)
	assert.Equal(t, 2512.345, *entries[2].Balance)

	// texto continua seguindo as regras de moeda brasileira
	assert.Equal(t, -1234.56, entries[3].Value())
	assert.Equal(t, domain.KindDebit, entries[3].Kind)
}

func TestImportHeaderStaysEmptyWhenFirstFileFails(t *testing.T) {
	noTable := [][]any{
		{"Associado:", "LOJA QUEBRADA"},
		{"Conta:", "999"},
		{"01/01/2024", "PIX", "", "1,00", ""},
	}
	files := []File{
		{Name: "quebrado.xlsx", Reader: buildWorkbook(t, noTable)},
		{Name: "jan.xlsx", Reader: buildWorkbook(t, sicrediRows())},
	}

	batch, err := NewService(nil).Import(files, "sicredi")
	require.NoError(t, err)
	assert.NotEmpty(t, batch.Files[0].Error)
	assert.Equal(t, domain.StatementHeader{}, batch.Header)
	assert.Len(t, batch.Entries, 5)
}

func TestGenericParserDetectsHeaderRow(t *testing.T) {
	rows := [][]any{
		{"Banco X"},
		{"Relatório"},
		{"Data Mov.", "Histórico", "Doc", "Valor", "Saldo"},
		{"05/03/2024", "Saldo Anterior", "", "", "10,00"},
		{"06/03/2024", "COMPRA", "", "(3,00)", "7,00"},
	}
	_, entries, _, err := NewService(nil).ParseFile(File{Name: "x.xlsx", Reader: buildWorkbook(t, rows)}, "x")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// sem tratamento especial de saldo anterior no leitor genérico
	assert.Equal(t, domain.KindNeutral, entries[0].Kind)
	assert.Equal(t, -3.0, entries[1].Value())
}

func TestParseWarningsForMalformedAmounts(t *testing.T) {
	rows := sicrediRows()
	rows = append(rows, []any{"04/01/2024", "VALOR ESTRANHO", "", "abc", "x1"})

	_, entries, warnings, err := NewService(nil).ParseFile(File{Name: "w.xlsx", Reader: buildWorkbook(t, rows)}, "748")
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, 0.0, last.Value())
	assert.Equal(t, domain.KindNeutral, last.Kind)
	require.Len(t, warnings, 2)
	assert.Equal(t, "abc", warnings[0].Value)
	assert.Equal(t, colAmount, warnings[0].Column)
	assert.Equal(t, colBalance, warnings[1].Column)
}

func TestImportConcatenatesFilesInOrder(t *testing.T) {
	second := [][]any{
		{"Associado:", "OUTRA LOJA"},
		{"Data", "Descrição", "Documento", "Valor", "Saldo"},
		{"", "Saldo Anterior", "", "", "1.217,50"},
		{"01/02/2024", "DEPOSITO EM DINHEIRO", "", "200,00", "1.417,50"},
	}
	files := []File{
		{Name: "jan.xlsx", Reader: buildWorkbook(t, sicrediRows())},
		{Name: "fev.xlsx", Reader: buildWorkbook(t, second)},
	}

	batch, err := NewService(nil).Import(files, "sicredi")
	require.NoError(t, err)
	assert.NotEmpty(t, batch.BatchID)
	assert.Equal(t, BankSicredi, batch.Bank)
	assert.Equal(t, "LOJA EXEMPLO LTDA", batch.Header.AccountHolder)

	require.Len(t, batch.Entries, 6)
	balances := 0
	for _, e := range batch.Entries {
		if e.Kind == domain.KindBalance {
			balances++
		}
	}
	assert.Equal(t, 1, balances)
	assert.Equal(t, domain.KindBalance, batch.Entries[0].Kind)
	assert.Equal(t, "jan.xlsx", batch.Entries[0].Source)
	assert.Equal(t, "sicredi-1-3", batch.Entries[5].ID)

	require.Len(t, batch.Files, 2)
	assert.Equal(t, 5, batch.Files[0].Entries)
	assert.Equal(t, 2, batch.Files[1].Entries)
	assert.NotEmpty(t, batch.Warnings)
}

func TestImportKeepsGoodFilesWhenOneFails(t *testing.T) {
	files := []File{
		{Name: "quebrado.xlsx", Reader: bytes.NewBufferString("não é planilha")},
		{Name: "jan.xlsx", Reader: buildWorkbook(t, sicrediRows())},
	}

	batch, err := NewService(nil).Import(files, "sicredi")
	require.NoError(t, err)
	require.Len(t, batch.Files, 2)
	assert.NotEmpty(t, batch.Files[0].Error)
	assert.Empty(t, batch.Header.AccountHolder, "cabeçalho vem apenas do primeiro arquivo")
	assert.Len(t, batch.Entries, 5)
}

func TestImportFailsWhenEveryFileFails(t *testing.T) {
	files := []File{
		{Name: "a.xlsx", Reader: bytes.NewBufferString("lixo")},
		{Name: "b.xlsx", Reader: buildWorkbook(t, [][]any{{"nada"}})},
	}

	batch, err := NewService(nil).Import(files, "sicredi")
	require.Error(t, err)
	require.NotNil(t, batch)

	var formatErr *domain.FormatError
	assert.True(t, errors.As(err, &formatErr))
	assert.Empty(t, batch.Entries)
}

func TestImportWithoutFiles(t *testing.T) {
	_, err := NewService(nil).Import(nil, "sicredi")
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestImportUnknownBankSuggestsAlias(t *testing.T) {
	batch, err := NewService(nil).Import([]File{{Name: "a.xlsx", Reader: buildWorkbook(t, sicrediRows())}}, "sicredy")
	require.NoError(t, err)
	assert.Equal(t, BankGeneric, batch.Bank)
	require.NotEmpty(t, batch.Warnings)
	assert.Contains(t, batch.Warnings[0].Message, "você quis dizer 'sicredi'")
}

func TestSuggestBankIgnoresDistantNames(t *testing.T) {
	assert.Equal(t, "", suggestBank("banco do brasil"))
	assert.Equal(t, "", suggestBank(""))
	assert.Equal(t, "sicredi", suggestBank("sicred"))
}
