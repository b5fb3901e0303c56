package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"financeiro-service/internal/api/responses"
	"financeiro-service/internal/core/export"
	"financeiro-service/internal/domain"
	"financeiro-service/internal/erp"

	"github.com/gin-gonic/gin"
)

// ERPClient são as consultas ao ERP expostas pela API.
type ERPClient interface {
	SearchReceivables(ctx context.Context, f erp.ReceivableFilter) ([]domain.ReceivableRecord, error)
	LookupPersons(ctx context.Context, codes []int) ([]domain.Person, error)
	LedgerExtract(ctx context.Context, f erp.LedgerFilter) ([]domain.LedgerEntry, error)
	PersonOrders(ctx context.Context, personCode int) ([]domain.Order, error)
	Danfe(ctx context.Context, req erp.DanfeRequest) ([]byte, error)
}

// ERPHandler expõe as consultas ao ERP (contas a receber, pessoas, razão, pedidos e DANFE).
type ERPHandler struct {
	client ERPClient
	now    func() time.Time
}

// NewERPHandler cria um novo handler de consultas ao ERP.
func NewERPHandler(client ERPClient) *ERPHandler {
	return &ERPHandler{client: client, now: time.Now}
}

// HandleSearchReceivables busca títulos do contas a receber.
func (h *ERPHandler) HandleSearchReceivables(c *gin.Context) {
	filter := erp.ReceivableFilter{
		StartDate: strings.TrimSpace(c.Query("startDate")),
		EndDate:   strings.TrimSpace(c.Query("endDate")),
	}
	lists := []struct {
		field string
		dst   *[]int
	}{
		{"status", &filter.Status},
		{"chargeTypes", &filter.ChargeTypes},
		{"customerCodes", &filter.CustomerCodes},
		{"paymentMethods", &filter.PaymentMethods},
		{"carrierCodes", &filter.CarrierCodes},
		{"branchCodes", &filter.BranchCodes},
	}
	for _, l := range lists {
		values, err := parseIntList(l.field, c.Query(l.field))
		if err != nil {
			responses.Error(c, http.StatusBadRequest, "Parâmetros inválidos", err.Error())
			return
		}
		*l.dst = values
	}
	invoice, err := parseOptionalInt("invoiceNumber", c.Query("invoiceNumber"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Parâmetros inválidos", err.Error())
		return
	}
	filter.InvoiceNumber = invoice

	records, err := h.client.SearchReceivables(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, "Erro ao buscar contas a receber")
		return
	}
	responses.Success(c, records, fmt.Sprintf("%d título(s) encontrado(s)", len(records)))
}

type personLookupRequest struct {
	PersonCodes []int `json:"personCodes"`
}

// HandleLookupPersons busca o cadastro de várias pessoas de uma vez.
func (h *ERPHandler) HandleLookupPersons(c *gin.Context) {
	var req personLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Corpo da requisição inválido", err.Error())
		return
	}

	persons, err := h.client.LookupPersons(c.Request.Context(), req.PersonCodes)
	if err != nil {
		writeError(c, err, "Erro ao buscar pessoas")
		return
	}
	responses.Success(c, persons, "Pessoas encontradas")
}

// HandleLedgerExtract busca o extrato de razão. Com ?formato=xlsx|csv devolve o arquivo.
func (h *ERPHandler) HandleLedgerExtract(c *gin.Context) {
	accounts, err := parseIntList("accountNumbers", c.Query("accountNumbers"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Parâmetros inválidos", err.Error())
		return
	}
	branches, err := parseIntList("branchCodes", c.Query("branchCodes"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Parâmetros inválidos", err.Error())
		return
	}

	var format export.Format
	wantsFile := strings.TrimSpace(c.Query("formato")) != ""
	if wantsFile {
		format, err = export.ParseFormat(c.Query("formato"))
		if err != nil {
			responses.Error(c, http.StatusBadRequest, "Formato de exportação inválido", err.Error())
			return
		}
	}

	entries, err := h.client.LedgerExtract(c.Request.Context(), erp.LedgerFilter{
		AccountNumbers: accounts,
		StartDate:      strings.TrimSpace(c.Query("startDate")),
		EndDate:        strings.TrimSpace(c.Query("endDate")),
		BranchCodes:    branches,
	})
	if err != nil {
		writeError(c, err, "Erro ao buscar o extrato de razão")
		return
	}

	if !wantsFile {
		responses.Success(c, entries, fmt.Sprintf("%d lançamento(s) encontrado(s)", len(entries)))
		return
	}

	data, err := export.Ledger(entries, format)
	if errors.Is(err, domain.ErrEmptyView) {
		responses.NoContent(c)
		return
	}
	if err != nil {
		writeError(c, err, "Erro ao gerar o arquivo do razão")
		return
	}
	responses.File(c, export.FileName(export.LedgerPrefix, "", h.now(), format), format.ContentType(), data)
}

// HandlePersonOrders lista os pedidos de uma pessoa.
func (h *ERPHandler) HandlePersonOrders(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Código de pessoa inválido", c.Param("code"))
		return
	}

	orders, err := h.client.PersonOrders(c.Request.Context(), code)
	if err != nil {
		writeError(c, err, "Erro ao buscar pedidos")
		return
	}
	responses.Success(c, orders, fmt.Sprintf("%d pedido(s) encontrado(s)", len(orders)))
}

// HandleDanfe gera o PDF do DANFE da nota informada.
func (h *ERPHandler) HandleDanfe(c *gin.Context) {
	var req erp.DanfeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Corpo da requisição inválido", err.Error())
		return
	}

	pdf, err := h.client.Danfe(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Erro ao gerar o DANFE")
		return
	}
	fileName := fmt.Sprintf("DANFE_%d_%d.pdf", req.BranchCode, req.TransactionCode)
	responses.File(c, fileName, "application/pdf", pdf)
}
