package erp

import (
	"net/url"
	"strconv"
	"strings"
)

// ReceivableFilter são os filtros da busca de contas a receber.
type ReceivableFilter struct {
	StartDate      string `validate:"required,datetime=2006-01-02"`
	EndDate        string `validate:"required,datetime=2006-01-02"`
	Status         []int  `validate:"omitempty,dive,gte=0"`
	ChargeTypes    []int  `validate:"omitempty,dive,gte=0"`
	CustomerCodes  []int  `validate:"omitempty,dive,gt=0"`
	PaymentMethods []int  `validate:"omitempty,dive,gt=0"`
	InvoiceNumber  int    `validate:"gte=0"`
	CarrierCodes   []int  `validate:"omitempty,dive,gt=0"`
	BranchCodes    []int  `validate:"omitempty,dive,gt=0"`
}

func (f ReceivableFilter) query() url.Values {
	q := url.Values{}
	q.Set("startDate", f.StartDate)
	q.Set("endDate", f.EndDate)
	setList(q, "status", f.Status)
	setList(q, "chargeTypes", f.ChargeTypes)
	setList(q, "customerCodes", f.CustomerCodes)
	setList(q, "paymentMethods", f.PaymentMethods)
	if f.InvoiceNumber > 0 {
		q.Set("invoiceNumber", strconv.Itoa(f.InvoiceNumber))
	}
	setList(q, "carrierCodes", f.CarrierCodes)
	setList(q, "branchCodes", f.BranchCodes)
	return q
}

// LedgerFilter são os filtros do extrato de razão contábil.
type LedgerFilter struct {
	AccountNumbers []int  `validate:"required,min=1,dive,gt=0"`
	StartDate      string `validate:"required,datetime=2006-01-02"`
	EndDate        string `validate:"required,datetime=2006-01-02"`
	BranchCodes    []int  `validate:"omitempty,dive,gt=0"`
}

func (f LedgerFilter) query() url.Values {
	q := url.Values{}
	setList(q, "accountNumbers", f.AccountNumbers)
	q.Set("startDate", f.StartDate)
	q.Set("endDate", f.EndDate)
	setList(q, "branchCodes", f.BranchCodes)
	return q
}

// DanfeRequest identifica a nota cujo DANFE será gerado.
type DanfeRequest struct {
	BranchCode      int    `json:"branchCode" validate:"required,gt=0"`
	PersonCode      int    `json:"personCode" validate:"required,gt=0"`
	TransactionCode int    `json:"transactionCode" validate:"required,gt=0"`
	TransactionDate string `json:"transactionDate" validate:"required,datetime=2006-01-02"`
}

type personBatchRequest struct {
	PersonCodes []int `json:"personCodes" validate:"required,min=1,dive,gt=0"`
}

type danfeResponse struct {
	PDFBase64 string `json:"pdfBase64"`
}

// setList grava a lista separada por vírgula, omitindo o parâmetro quando vazia.
func setList(q url.Values, key string, values []int) {
	if len(values) == 0 {
		return
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	q.Set(key, strings.Join(parts, ","))
}
