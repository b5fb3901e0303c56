package export

import (
	"strconv"

	"financeiro-service/internal/domain"
)

// Prefixos dos nomes de arquivo de cada visão.
const (
	StatementPrefix      = "Extrato"
	ReconciliationPrefix = "ConciliacaoPix"
	LedgerPrefix         = "Razao"
)

// Statement exporta as linhas da visão de extrato, na ordem recebida.
func Statement(rows []domain.StatementEntry, f Format) ([]byte, error) {
	t := table{
		sheet:  "Extrato",
		header: []string{"Data", "Descrição", "Documento", "Valor", "Saldo"},
	}
	for _, e := range rows {
		t.rows = append(t.rows, []value{
			text(e.Date),
			text(e.Description),
			text(e.Document),
			amount(e.Amount),
			amount(e.Balance),
		})
	}
	return t.render(f)
}

// Reconciliation exporta o resultado da conciliação PIX, um título por linha.
func Reconciliation(report domain.ReconciliationReport, f Format) ([]byte, error) {
	t := table{
		sheet: "Conciliação PIX",
		header: []string{
			"Filial", "Cliente", "Nome", "Nota", "Parcela", "Data Liquidação",
			"Valor ERP", "Data Extrato", "Valor Extrato", "Diferença", "Situação",
		},
	}
	for _, r := range report.Results {
		stmtDate := ""
		var stmtAmount *float64
		status := "Não conciliado"
		if r.Statement != nil {
			stmtDate = r.Statement.Date
			stmtAmount = r.Statement.Amount
		}
		if r.Matched {
			status = "Conciliado"
		}
		t.rows = append(t.rows, []value{
			text(strconv.Itoa(r.Record.BranchCode)),
			text(strconv.Itoa(r.Record.CustomerCode)),
			text(r.Record.CustomerName),
			text(strconv.Itoa(r.Record.InvoiceNumber)),
			text(strconv.Itoa(r.Record.Installment)),
			text(r.SettlementDate),
			amountOf(r.PaidValue),
			text(stmtDate),
			amount(stmtAmount),
			amount(r.Difference),
			text(status),
		})
	}
	return t.render(f)
}

// Ledger exporta o extrato de razão contábil.
func Ledger(entries []domain.LedgerEntry, f Format) ([]byte, error) {
	t := table{
		sheet: "Razão",
		header: []string{
			"Conta", "Nome da Conta", "Filial", "Data", "Histórico", "Documento",
			"Débito", "Crédito", "Saldo",
		},
	}
	for _, e := range entries {
		t.rows = append(t.rows, []value{
			text(strconv.Itoa(e.AccountNumber)),
			text(e.AccountName),
			text(strconv.Itoa(e.BranchCode)),
			text(e.MovementDate),
			text(e.History),
			text(e.DocumentNumber),
			amountOf(e.DebitValue),
			amountOf(e.CreditValue),
			amountOf(e.Balance),
		})
	}
	return t.render(f)
}
